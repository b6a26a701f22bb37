// Package ofx turns OFX/QFX bank statements into transactions ready to be
// stored.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/fintrack/internal/model"
)

// UnnamedDescription is used for statement lines that carry no name.
const UnnamedDescription = "Movimiento bancario"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line converted to a create request.
type Entry struct {
	FitID       string
	Account     string
	Transaction model.NewTransaction
}

// Key identifies the entry for duplicate detection.
func (e Entry) Key() string {
	t := e.Transaction
	return DedupeKey(t.Date, t.Type, t.Amount, t.Description)
}

// DedupeKey builds the duplicate-detection key shared by imported entries
// and stored transactions. Only the calendar date takes part.
func DedupeKey(date time.Time, txnType model.TransactionType, amount float64, description string) string {
	return fmt.Sprintf("%s|%s|%.2f|%s",
		date.UTC().Format("2006-01-02"),
		txnType,
		amount,
		strings.ToLower(strings.TrimSpace(description)))
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file. Lines with a zero amount are skipped
// and lines repeating a FITID within the file are collapsed.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int
	seen := make(map[string]bool)

	collect := func(account string, list *ofxgo.TransactionList) error {
		if list == nil {
			return nil
		}
		for _, ofxTx := range list.Transactions {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, ok := p.convertTransaction(ofxTx, account)
			if !ok {
				continue
			}
			if entry.FitID != "" {
				id := account + "/" + entry.FitID
				if seen[id] {
					continue
				}
				seen[id] = true
			}
			entries = append(entries, entry)
		}
		return nil
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if err := collect(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, err
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if err := collect(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, err
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

// convertTransaction converts an OFX line. Credits become income and debits
// become expenses, always with a positive amount.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account string) (Entry, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount == 0 {
		slog.Warn("Skipping zero-amount OFX transaction", "fitid", ofxTx.FiTID, "account", account)
		return Entry{}, false
	}

	txnType := model.TypeIncome
	if amount < 0 {
		txnType = model.TypeExpense
		amount = -amount
	}

	description := p.extractMerchantName(ofxTx)
	if description == "" {
		description = UnnamedDescription
	}

	return Entry{
		FitID:   string(ofxTx.FiTID),
		Account: account,
		Transaction: model.NewTransaction{
			Amount:      amount,
			Type:        txnType,
			Description: description,
			Category:    inferCategory(ofxTx, txnType),
			Date:        ofxTx.DtPosted.Time.UTC(),
		},
	}, true
}

// inferCategory maps the OFX transaction type to a category of txnType.
// OFX carries no categories, so most lines land in the catch-all.
func inferCategory(tx ofxgo.Transaction, txnType model.TransactionType) model.Category {
	switch txnType {
	case model.TypeIncome:
		switch tx.TrnType {
		case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
			return model.CategoryInvestment
		case ofxgo.TrnTypeDirectDep:
			return model.CategorySalary
		}
	case model.TypeExpense:
		switch tx.TrnType {
		case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
			return model.CategoryUtilities
		case ofxgo.TrnTypePOS:
			return model.CategoryShopping
		}
	}
	return model.DefaultCategory(txnType)
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is cleaner than NAME when present
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"COMPRA CON TARJETA ",
		"DEBITO AUTOMATICO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var accounts []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
