package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
	"github.com/triggerNode/BuxTax/src/utils"
)

const msgEmptyFile = "CSV file is empty or has no header row"

var (
	errNegativeNet    = errors.New("net amount cannot be negative")
	errMissingTxField = errors.New("missing date, description or amount")

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// digits with an optional sign and fraction; no exponents, hex or underscores
	amountPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

type csvParserImpl struct {
	rates       rates.RateConstants
	categorizer Categorizer
}

// NewCSVParser returns a CSVParser converting amounts with r. A nil categorizer uses the
// built-in synonym table.
func NewCSVParser(r rates.RateConstants, categorizer Categorizer) CSVParser {
	if categorizer == nil {
		categorizer = NewCategorizer()
	}
	return &csvParserImpl{rates: r, categorizer: categorizer}
}

func (p *csvParserImpl) ParseString(csvText string, mapping *models.ColumnMapping) *models.ParseResult {
	return p.Parse(strings.NewReader(csvText), mapping)
}

// Parse reads the whole file, detects the column mapping when none is given and routes the
// rows to direct or transaction parsing. Accepted records are sorted by date.
func (p *csvParserImpl) Parse(file io.Reader, mapping *models.ColumnMapping) *models.ParseResult {
	result := &models.ParseResult{
		Data:    []models.PayoutRecord{},
		Errors:  []string{},
		Headers: []string{},
		Format:  models.FormatSummary,
	}

	headers, rows, readErrs, err := readRecords(file)
	if err != nil {
		logger.L.Warn("CSV could not be read", "error", err)
		result.Errors = append(result.Errors, msgEmptyFile)
		return result
	}
	result.Errors = append(result.Errors, readErrs...)
	if headers == nil {
		result.Errors = append(result.Errors, msgEmptyFile)
		return result
	}
	result.Headers = headers
	result.Summary.TotalRows = len(rows)

	if mapping == nil || mapping.IsEmpty() {
		result.Mapping = DetectColumns(headers)
	} else {
		result.Mapping = *mapping
	}

	index := newHeaderIndex(headers)
	if IsTransactionFormat(result.Mapping) {
		result.Format = models.FormatTransaction
		p.parseTransactions(result, index, rows)
	} else {
		p.parseSummaryRows(result, index, rows)
	}

	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].Date < result.Data[j].Date
	})
	result.Summary.ValidRows = len(result.Data)
	if n := len(result.Data); n > 0 {
		result.Summary.DateRange = models.DateRange{Start: result.Data[0].Date, End: result.Data[n-1].Date}
	}

	logger.L.Debug("CSV parsed", "format", result.Format, "totalRows", result.Summary.TotalRows,
		"validRows", result.Summary.ValidRows, "errors", len(result.Errors))
	return result
}

func (p *csvParserImpl) parseSummaryRows(result *models.ParseResult, index headerIndex, rows []csvRow) {
	m := result.Mapping
	for _, row := range rows {
		rec, err := p.parseSummaryRow(m, index, row.fields)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", row.number, capitalize(err.Error())))
			continue
		}
		result.Data = append(result.Data, rec)
	}
}

func (p *csvParserImpl) parseSummaryRow(m models.ColumnMapping, index headerIndex, fields []string) (models.PayoutRecord, error) {
	var rec models.PayoutRecord
	var providedNet float64

	numeric := []struct {
		header string
		dst    *float64
	}{
		{m.GrossAmount, &rec.GrossAmount},
		{m.NetAmount, &providedNet},
		{m.MarketplaceFee, &rec.MarketplaceFee},
		{m.AdSpend, &rec.AdSpend},
		{m.GroupSplits, &rec.GroupSplits},
		{m.AffiliatePayouts, &rec.AffiliatePayouts},
		{m.Refunds, &rec.Refunds},
		{m.OtherCosts, &rec.OtherCosts},
	}
	for _, n := range numeric {
		raw := index.value(fields, n.header)
		v, err := parseAmount(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid number in '%s': '%s'", n.header, raw)
		}
		*n.dst = math.Max(0, v)
	}

	rec.NetAmount = providedNet
	if rec.NetAmount == 0 {
		net := rec.ComputedNet()
		if net.IsNegative() {
			return rec, errNegativeNet
		}
		rec.NetAmount = net.InexactFloat64()
	}

	date, err := utils.NormalizeDate(index.value(fields, m.Date))
	if err != nil {
		return rec, err
	}
	rec.Date = date
	rec.USDValue = p.rates.ToUSD(rec.NetAmount)
	return rec, nil
}

func (p *csvParserImpl) parseTransactions(result *models.ParseResult, index headerIndex, rows []csvRow) {
	m := result.Mapping
	txRows := make([]models.TransactionRow, 0, len(rows))
	for _, row := range rows {
		tx, err := parseTransactionRow(m, index, row.fields)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", row.number, capitalize(err.Error())))
			continue
		}
		txRows = append(txRows, tx)
	}

	for _, rec := range AggregateTransactions(txRows, p.categorizer, p.rates) {
		if rec.NetAmount < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Date %s: %s", rec.Date, capitalize(errNegativeNet.Error())))
			continue
		}
		result.Data = append(result.Data, rec)
	}
}

func parseTransactionRow(m models.ColumnMapping, index headerIndex, fields []string) (models.TransactionRow, error) {
	rawDate := index.value(fields, m.Date)
	description := index.value(fields, m.Description)
	rawAmount := index.value(fields, m.Amount)
	if rawDate == "" || description == "" || rawAmount == "" {
		return models.TransactionRow{}, errMissingTxField
	}

	amount, err := parseAmount(rawAmount)
	if err != nil {
		return models.TransactionRow{}, fmt.Errorf("invalid amount '%s'", rawAmount)
	}
	date, err := utils.NormalizeDate(rawDate)
	if err != nil {
		return models.TransactionRow{}, err
	}
	return models.TransactionRow{Date: date, Description: description, Amount: amount}, nil
}

// parseAmount strips currency symbols, thousands separators and whitespace and parses the
// rest as a plain decimal literal. Empty input is 0.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(raw, "R$", "")
	cleaned = strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return 0, nil
	}
	if !amountPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	return v.InexactFloat64(), nil
}

// capitalize turns an error string into a user-facing sentence.
func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

type csvRow struct {
	number int // 1-based data row number
	fields []string
}

// readRecords tokenizes the file. The first non-blank record is the header; fully blank
// records are dropped without being counted. Tokenizer errors are returned as row messages.
func readRecords(file io.Reader) ([]string, []csvRow, []string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var headers []string
	var rows []csvRow
	var rowErrs []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, fmt.Sprintf("Row %d: %s", len(rows)+1, parseErr.Err))
				continue
			}
			return nil, nil, nil, err
		}
		if isBlankRecord(record) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(record))
			for i, h := range record {
				headers[i] = strings.TrimSpace(h)
			}
			continue
		}
		rows = append(rows, csvRow{number: len(rows) + 1, fields: record})
	}
	return headers, rows, rowErrs, nil
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// headerIndex resolves a header name to its column. Duplicate headers resolve to the first.
type headerIndex map[string]int

func newHeaderIndex(headers []string) headerIndex {
	idx := make(headerIndex, len(headers))
	for i, h := range headers {
		if _, exists := idx[h]; !exists {
			idx[h] = i
		}
	}
	return idx
}

func (h headerIndex) value(fields []string, header string) string {
	if header == "" {
		return ""
	}
	i, ok := h[header]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
