package httpapi

import (
	"errors"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
)

func asValidation(err error, target **chartoserr.ValidationError) bool {
	return errors.As(err, target)
}

func asNotFound(err error, target **chartoserr.NotFoundError) bool {
	return errors.As(err, target)
}
