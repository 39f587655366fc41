package billing

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages holds the signup form messages shown to visitors.
var fieldMessages = map[string]string{
	"name":                   "Nome completo é obrigatório",
	"email":                  "Email inválido",
	"cpfCnpj":                "CPF/CNPJ é obrigatório",
	"phone":                  "Telefone é obrigatório",
	"state":                  "Estado deve ter 2 letras",
	"creditCard.holderName":  "Nome do titular é obrigatório",
	"creditCard.number":      "Número do cartão inválido",
	"creditCard.expiryMonth": "Mês deve ter 2 dígitos",
	"creditCard.expiryYear":  "Ano deve ter 4 dígitos",
	"creditCard.ccv":         "CVV deve ter 3 ou 4 dígitos",
	"value":                  "Valor é obrigatório",
	"cycle":                  "Ciclo inválido",
	"password":               "Senha deve ter no mínimo 6 caracteres",
}

// Validate checks a struct against its validate tags and returns a
// *ValidationError keyed by JSON field path.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// drop the root struct name
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		msg, ok := fieldMessages[path]
		if !ok {
			msg = "Campo inválido (" + fe.Tag() + ")"
		}
		fields[path] = msg
	}
	return &ValidationError{Fields: fields}
}

// normalize trims free text and applies defaults before validation.
func (r *SubscribeRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.CpfCnpj = strings.TrimSpace(r.CpfCnpj)
	r.Phone = strings.TrimSpace(r.Phone)
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	r.CreditCard.HolderName = strings.TrimSpace(r.CreditCard.HolderName)
	r.CreditCard.Number = strings.ReplaceAll(strings.TrimSpace(r.CreditCard.Number), " ", "")
	if r.Cycle == "" {
		r.Cycle = DefaultCycle
	}
}
