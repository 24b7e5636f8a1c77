package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/logx"
)

// Kind names a request body shape.
type Kind string

const (
	ProductAdd        Kind = "product_add"
	ProductVerify     Kind = "product_verify"
	ProductUpdate     Kind = "product_update"
	Signup            Kind = "signup"
	UsernameLogin     Kind = "username_login"
	EmailLogin        Kind = "email_login"
	OrderPlace        Kind = "order_place"
	DistributorUpdate Kind = "distributor_update"
)

type rule struct {
	schema  string
	message string
}

var rules = map[Kind]rule{
	ProductAdd:        {productAddSchema, apierrors.ErrMsgAllFieldsRequired},
	ProductVerify:     {productVerifySchema, apierrors.ErrMsgMissingRequiredFields},
	ProductUpdate:     {productUpdateSchema, apierrors.ErrMsgInvalidRequest},
	Signup:            {signupSchema, apierrors.ErrMsgAllFieldsRequired},
	UsernameLogin:     {usernameLoginSchema, apierrors.ErrMsgCredentialsRequired},
	EmailLogin:        {emailLoginSchema, apierrors.ErrMsgEmailPasswordRequired},
	OrderPlace:        {orderPlaceSchema, apierrors.ErrMsgMissingRequiredFields},
	DistributorUpdate: {distributorUpdateSchema, apierrors.ErrMsgMissingRequiredFields},
}

var (
	compileOnce sync.Once
	compiled    map[Kind]*gojsonschema.Schema
	compileErr  error
)

func compile() {
	compiled = make(map[Kind]*gojsonschema.Schema, len(rules))
	for kind, r := range rules {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(r.schema))
		if err != nil {
			compileErr = fmt.Errorf("compile %s schema: %w", kind, err)
			return
		}
		compiled[kind] = s
	}
}

// Validate checks body against the schema for kind. A rejected body yields
// an invalid_request APIError carrying the client-facing message and the
// individual violations as detail.
func Validate(kind Kind, body []byte) error {
	compileOnce.Do(compile)
	if compileErr != nil {
		return apierrors.Wrap(apierrors.ErrCodeInternal, apierrors.ErrMsgServer, compileErr)
	}

	schema, ok := compiled[kind]
	if !ok {
		return apierrors.Wrap(apierrors.ErrCodeInternal, apierrors.ErrMsgServer, fmt.Errorf("no schema for %s", kind))
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidRequest, apierrors.ErrMsgInvalidRequest, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	detail := strings.Join(violations, "; ")
	logx.Debug("VALIDATION", fmt.Sprintf("Rejected request body | kind=%s | violations=%s", kind, detail))
	return &apierrors.APIError{
		Code:    apierrors.ErrCodeInvalidRequest,
		Message: rules[kind].message,
		Detail:  detail,
	}
}
