package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oksasatya/go-registration-flow/internal/infrastructure/storage"
	"github.com/oksasatya/go-registration-flow/pkg/validation"
)

var errMemoryDriver = errors.New("STORE_DRIVER=memory keeps nothing after seed exits; use mongo or postgres")

type account struct {
	Email    string `form:"email" validate:"required,email"`
	Username string `form:"username" validate:"required,username"`
	Phone    string `form:"phone" validate:"required"`
	Password string `form:"password" validate:"required,strongpwd"`
}

// check rejects drivers that cannot persist the account and invalid flags.
func check(driver string, a account) error {
	if driver == storage.DriverMemory {
		return errMemoryDriver
	}
	if err := validation.New().Struct(a); err != nil {
		details := validation.ToDetails(err)
		fields := make([]string, 0, len(details))
		for f, msg := range details {
			fields = append(fields, f+" "+msg)
		}
		sort.Strings(fields)
		return fmt.Errorf("invalid account: %s", strings.Join(fields, "; "))
	}
	return nil
}
