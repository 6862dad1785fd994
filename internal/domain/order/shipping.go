package order

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// ShippingAddress 收货信息
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Note       string `json:"note"`
}

// Validate 校验收货信息
func (a ShippingAddress) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required.Error("收货人不能为空"), validation.Length(1, 100)),
		validation.Field(&a.Phone, validation.Required.Error("联系电话不能为空"),
			validation.Match(phonePattern).Error("联系电话格式不正确")),
		validation.Field(&a.Email, validation.When(a.Email != "", is.EmailFormat.Error("邮箱格式不正确"))),
		validation.Field(&a.Address, validation.Required.Error("收货地址不能为空"), validation.Length(1, 500)),
		validation.Field(&a.City, validation.Required.Error("城市不能为空")),
		validation.Field(&a.Note, validation.Length(0, 500)),
	)
	if err == nil {
		return nil
	}

	details := map[string]interface{}{}
	if errs, ok := err.(validation.Errors); ok {
		for field, e := range errs {
			details[field] = e.Error()
		}
	}
	return ErrInvalidShipping.WithDetails(details)
}

// FullAddress 拼接完整地址（快递面单使用）
func (a ShippingAddress) FullAddress() string {
	parts := []string{a.Address, a.City}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	return strings.Join(parts, ", ")
}
