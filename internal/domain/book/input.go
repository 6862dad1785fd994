package book

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	isbnPattern = regexp.MustCompile(`^(\d{9}[\dX]|\d{13})$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Input 图书录入信息（创建和更新共用）
type Input struct {
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	Description   string
	Price         int64
	Stock         int
	Category      string
	ImageURL      string
	Language      string
	Pages         int
	PublishedDate string
	Featured      bool
}

// Validate 校验录入信息
func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ISBN, validation.When(in.ISBN != "",
			validation.By(func(v interface{}) error {
				if !isbnPattern.MatchString(CleanISBN(v.(string))) {
					return validation.NewError("validation_isbn", "ISBN必须为10位或13位")
				}
				return nil
			}),
		)),
		validation.Field(&in.Title, validation.Required.Error("书名不能为空"), validation.Length(1, 255)),
		validation.Field(&in.Author, validation.Required.Error("作者不能为空"), validation.Length(1, 255)),
		validation.Field(&in.Category, validation.Required.Error("分类不能为空"), validation.Length(1, 100)),
		validation.Field(&in.Price, validation.Min(int64(0)).Error("价格不能为负数")),
		validation.Field(&in.Stock, validation.Min(0).Error("库存不能为负数")),
		validation.Field(&in.Pages, validation.Min(0)),
		validation.Field(&in.ImageURL, validation.When(in.ImageURL != "", is.URL.Error("图片地址不合法"))),
		validation.Field(&in.PublishedDate, validation.When(in.PublishedDate != "",
			validation.Match(datePattern).Error("出版日期格式应为YYYY-MM-DD"))),
	)
	if err != nil {
		return ErrInvalidBook.WithMessage(err.Error()).WithDetails(fieldErrors(err))
	}
	return nil
}

// CleanISBN 去掉ISBN中的分隔符
func CleanISBN(isbn string) string {
	out := make([]byte, 0, len(isbn))
	for i := 0; i < len(isbn); i++ {
		c := isbn[i]
		if (c >= '0' && c <= '9') || c == 'X' {
			out = append(out, c)
		}
	}
	return string(out)
}

func fieldErrors(err error) map[string]interface{} {
	details := map[string]interface{}{}
	if errs, ok := err.(validation.Errors); ok {
		for field, e := range errs {
			details[field] = e.Error()
		}
	}
	return details
}

