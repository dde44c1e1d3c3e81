package middleware

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hospital-api/pkg/validator"
)

var registerTagNames sync.Once

// UseJSONFieldNames makes gin's binding validator report fields by their JSON
// names, so "wardCode: failed on required" reaches the client instead of the
// Go field name.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
			v.RegisterTagNameFunc(validator.FieldName)
		}
	})
}
