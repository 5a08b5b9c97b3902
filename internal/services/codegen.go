package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"queue-system/internal/status"
	"queue-system/internal/store"
	"queue-system/utils"
)

// uniqueCode generates a random upper-alphanumeric code and collision-checks
// it against existing rows, retrying up to retries times before giving up
// with ErrCodeGenerationExhausted.
func uniqueCode(app core.App, collection string, size, retries int) (string, error) {
	if retries <= 0 {
		retries = 10
	}
	for i := 0; i < retries; i++ {
		code, err := utils.GenerateCode(size)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		exists, err := store.CodeExists(app, collection, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", status.ErrCodeGenerationExhausted
}
