package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/orders"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// timestamps must parse the way the sales rollup reads them
	_ = v.RegisterValidation("timestamp", func(fl validatorv10.FieldLevel) bool {
		_, ok := orders.ParseTimestamp(fl.Field().String())
		return ok
	})

	// the claimed total must equal the sum of (price * quantity) of items
	v.RegisterStructValidation(orderStructValidation, orders.Order{})

	return v
}

// orderStructValidation verifies the aggregated total of items equals TotalAmount (within cents)
func orderStructValidation(sl validatorv10.StructLevel) {
	o := sl.Current().Interface().(orders.Order)

	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}

	sumCents := int64(math.Round(sum * 100))
	totalCents := int64(math.Round(o.TotalAmount * 100))
	if sumCents != totalCents {
		sl.ReportError(o.TotalAmount, "totalAmount", "TotalAmount", "total_matches_items", fmt.Sprintf("%.2f", sum))
	}
}

// OrderValidator checks the order schema and the per-game account fields.
type OrderValidator struct {
	v     *validatorv10.Validate
	rules *Registry
}

// NewOrderValidator returns a validator using the default game rules.
func NewOrderValidator() *OrderValidator {
	return &OrderValidator{v: New(), rules: DefaultRegistry()}
}

// ValidateOrder implements orders.Validator.
func (ov *OrderValidator) ValidateOrder(o orders.Order) error {
	if err := ov.v.Struct(o); err != nil {
		return toValidationError(err)
	}
	for i, it := range o.Items {
		rules := ov.rules.For(it.GameID)
		if !rules.Validate(it) {
			return apperr.Validation(fmt.Sprintf("items[%d]", i), "%s requires %s", it.GameID, strings.Join(rules.RequiredFields(), ", "))
		}
	}
	return nil
}

// Struct validates any tagged struct and converts failures to a ValidationError.
func (ov *OrderValidator) Struct(s any) error {
	if err := ov.v.Struct(s); err != nil {
		return toValidationError(err)
	}
	return nil
}

// toValidationError reports the first failing field.
func toValidationError(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return apperr.Validation("", "%s", err.Error())
	}
	fe := ve[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field, "is required")
	case "min":
		return apperr.Validation(field, "must be at least %s", fe.Param())
	case "gte":
		return apperr.Validation(field, "must be >= %s", fe.Param())
	case "oneof":
		return apperr.Validation(field, "must be one of [%s]", fe.Param())
	case "timestamp":
		return apperr.Validation(field, "must be an ISO-8601 timestamp")
	case "total_matches_items":
		return apperr.Validation(field, "does not match items sum %s", fe.Param())
	default:
		return apperr.Validation(field, "failed %s", fe.Tag())
	}
}

// fieldPath drops the root struct name: "Order.items[0].price" -> "items[0].price".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
