// Command import_stock loads an ingredient price list into the inventory.
// It accepts either a CSV file with name, price_per_unit and quantity
// columns, or a PDF price list whose lines follow the same shape.
package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mise/internal/config"
	"mise/internal/db"
	"mise/models"
)

var (
	cleanWhitespace  = regexp.MustCompile(`\s+`)
	priceLinePattern = regexp.MustCompile(`^(.*?)\s+([-+]?\d+(?:\.\d+)?)\s+([-+]?\d+(?:\.\d+)?)$`)
)

type stockRow struct {
	Name         string
	PricePerUnit decimal.Decimal
	Quantity     decimal.Decimal
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_stock <price-list.csv|price-list.pdf>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("price list path must not be empty")
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate price list: %w", err)
	}

	rows, err := parsePriceList(path)
	if err != nil {
		return fmt.Errorf("parse price list: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("price list contains no usable rows")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	imported, err := importRows(database, rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(path))
	return nil
}

func parsePriceList(path string) ([]stockRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parseCSV(file)
	case ".pdf":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, err
		}
		return parsePriceLines(text), nil
	default:
		return nil, fmt.Errorf("unsupported price list format %q", filepath.Ext(path))
	}
}

func parseCSV(reader io.Reader) ([]stockRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv is empty")
	}

	start := 0
	if isHeaderRow(records[0]) {
		start = 1
	}

	rows := make([]stockRow, 0, len(records)-start)
	for idx, record := range records[start:] {
		if len(record) < 3 {
			return nil, fmt.Errorf("row %d: expected name, price_per_unit and quantity", idx+start+1)
		}
		row, err := buildStockRow(record[0], record[1], record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+start+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "name" || first == "ingredient"
}

// parsePriceLines picks the lines that end with two numeric columns and
// treats everything before them as the ingredient name.
func parsePriceLines(text string) []stockRow {
	var rows []stockRow
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(cleanWhitespace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		match := priceLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		row, err := buildStockRow(match[1], match[2], match[3])
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func buildStockRow(name, price, quantity string) (stockRow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return stockRow{}, errors.New("ingredient name must not be empty")
	}

	parsedPrice, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return stockRow{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if parsedPrice.IsNegative() {
		return stockRow{}, fmt.Errorf("price %s must not be negative", parsedPrice)
	}

	parsedQuantity, err := decimal.NewFromString(strings.TrimSpace(quantity))
	if err != nil {
		return stockRow{}, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if parsedQuantity.IsNegative() {
		return stockRow{}, fmt.Errorf("quantity %s must not be negative", parsedQuantity)
	}

	return stockRow{Name: name, PricePerUnit: parsedPrice, Quantity: parsedQuantity}, nil
}

// importRows upserts each row by ingredient name. Existing ingredients take
// the new price and have the delivered quantity added to their stock.
func importRows(database *gorm.DB, rows []stockRow) (int, error) {
	imported := 0
	for idx, row := range rows {
		if err := database.Transaction(func(tx *gorm.DB) error {
			var existing models.Ingredient
			err := tx.Where("name = ?", row.Name).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(&models.Ingredient{
					Name:         row.Name,
					PricePerUnit: row.PricePerUnit,
					Quantity:     row.Quantity,
				}).Error
			}
			if err != nil {
				return fmt.Errorf("find ingredient %q: %w", row.Name, err)
			}

			return tx.Model(&existing).Updates(map[string]any{
				"price_per_unit": row.PricePerUnit,
				"quantity":       existing.Quantity.Add(row.Quantity),
			}).Error
		}); err != nil {
			return imported, fmt.Errorf("row %d (%s): %w", idx+1, row.Name, err)
		}
		imported++
	}
	return imported, nil
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
