package fakers

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
)

var productCategories = []string{"serums", "cleansers", "moisturizers", "soaps", "oils", "body-care"}

var productKinds = map[string][]string{
	"serums":       {"Glow Serum", "Vitamin C Serum", "Niacinamide Serum"},
	"cleansers":    {"Foaming Cleanser", "Gentle Face Wash"},
	"moisturizers": {"Shea Moisturizer", "Night Cream", "Day Cream"},
	"soaps":        {"Black Soap", "Turmeric Soap", "Kojic Soap"},
	"oils":         {"Glow Oil", "Carrot Oil"},
	"body-care":    {"Body Butter", "Body Scrub", "Glow Lotion"},
}

func ProductFaker() *models.Product {
	category := productCategories[rand.Intn(len(productCategories))]
	kinds := productKinds[category]
	title := fmt.Sprintf("%s %s", capitalize(faker.Word()), kinds[rand.Intn(len(kinds))])

	id := uuid.New().String()
	price := fakePrice()

	product := &models.Product{
		ID:          id,
		Title:       title,
		Slug:        slug.Make(title + "-" + id[:6]),
		Price:       price,
		Images:      fakeImages(id),
		Stock:       rand.Intn(40) + 1,
		Category:    category,
		Featured:    rand.Intn(4) == 0,
		Benefits:    faker.Sentence(),
		ShortDesc:   faker.Sentence(),
		Description: faker.Paragraph(),
	}

	if rand.Intn(3) == 0 {
		original := price.Mul(decimal.NewFromFloat(1.2)).Round(-2)
		product.OriginalPrice = &original
	}
	return product
}

// fakePrice returns a naira price between 2,000 and 25,000 in steps of 500.
func fakePrice() decimal.Decimal {
	steps := rand.Intn(47)
	return decimal.NewFromInt(int64(2000 + steps*500))
}

func fakeImages(id string) []string {
	n := rand.Intn(3) + 1
	images := make([]string, n)
	for i := range images {
		images[i] = fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/800", id[:8], i)
	}
	return images
}

func capitalize(w string) string {
	if w == "" {
		return "TKB"
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
