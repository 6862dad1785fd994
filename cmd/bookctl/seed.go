package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/money"
)

// seedBook 导入文件中的一本书，价格用十进制字符串书写
type seedBook struct {
	ISBN          string `mapstructure:"isbn"`
	Title         string `mapstructure:"title"`
	Author        string `mapstructure:"author"`
	Publisher     string `mapstructure:"publisher"`
	Description   string `mapstructure:"description"`
	Price         string `mapstructure:"price"`
	Stock         int    `mapstructure:"stock"`
	Category      string `mapstructure:"category"`
	ImageURL      string `mapstructure:"image_url"`
	Language      string `mapstructure:"language"`
	Pages         int    `mapstructure:"pages"`
	PublishedDate string `mapstructure:"published_date"`
	Featured      bool   `mapstructure:"featured"`
}

func (s seedBook) toInput() (book.Input, error) {
	price, err := money.Parse(s.Price)
	if err != nil {
		return book.Input{}, err
	}
	return book.Input{
		ISBN:          s.ISBN,
		Title:         s.Title,
		Author:        s.Author,
		Publisher:     s.Publisher,
		Description:   s.Description,
		Price:         price,
		Stock:         s.Stock,
		Category:      s.Category,
		ImageURL:      s.ImageURL,
		Language:      s.Language,
		Pages:         s.Pages,
		PublishedDate: s.PublishedDate,
		Featured:      s.Featured,
	}, nil
}

// loadSeedFile 读取books列表，支持yaml和json
func loadSeedFile(path string) ([]seedBook, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取导入文件失败: %w", err)
	}

	var books []seedBook
	if err := v.UnmarshalKey("books", &books); err != nil {
		return nil, fmt.Errorf("解析导入文件失败: %w", err)
	}
	return books, nil
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从文件批量导入图书",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := loadSeedFile(file)
			if err != nil {
				return err
			}

			repos, err := persistence.New(cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			svc := book.NewService(repos.Books)
			created, failed := 0, 0
			for i, sb := range books {
				in, err := sb.toInput()
				if err == nil {
					_, err = svc.Create(cmd.Context(), in)
				}
				if err != nil {
					failed++
					logger.Error("导入图书失败", err, map[string]interface{}{
						"index": i,
						"isbn":  sb.ISBN,
						"title": sb.Title,
					})
					continue
				}
				created++
			}

			logger.Info("图书导入完成", map[string]interface{}{
				"created": created,
				"failed":  failed,
			})
			if failed > 0 {
				return fmt.Errorf("%d本图书导入失败", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "图书文件（yaml/json，顶层键books）")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
