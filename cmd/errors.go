// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// formatPqError unwraps a raw *pq.Error into a terminal-friendly message,
// falling back to err's own message for anything else. Adapted from
// pkg/db's errors.As(err, &pqErr) unwrapping.
func formatPqError(err error) error {
	pqErr := &pq.Error{}
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %s", pqErr.Message, pqErr.Detail)
	}
	return err
}
