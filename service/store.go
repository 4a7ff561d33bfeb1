package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/nlp"
)

// Store persists contracts, customers and synced CRM records in a
// SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at path and ensures the
// schema exists.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			email TEXT,
			company TEXT,
			phone TEXT,
			address TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id TEXT PRIMARY KEY,
			contract_number TEXT,
			title TEXT,
			tenant TEXT NOT NULL,
			customer_id TEXT,
			filename TEXT,
			file_url TEXT,
			status TEXT NOT NULL,
			raw_text TEXT,
			renewal_date TEXT,
			payment_terms TEXT,
			payment_frequency TEXT,
			total_value REAL,
			obligations TEXT,
			parsed TEXT,
			error_msg TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_tenant ON contracts(tenant)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_renewal ON contracts(renewal_date)`,
		`CREATE TABLE IF NOT EXISTS crm_records (
			id TEXT PRIMARY KEY,
			customer_id TEXT,
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			account_name TEXT,
			industry TEXT,
			annual_revenue REAL,
			employee_count INTEGER,
			primary_contact TEXT,
			primary_email TEXT,
			last_activity_date TEXT,
			raw TEXT,
			synced_at TEXT NOT NULL,
			UNIQUE(source, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crm_records_account ON crm_records(account_name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveContract inserts or replaces a contract row and refreshes its
// UpdatedAt stamp.
func (s *Store) SaveContract(c *model.Contract) error {
	c.UpdatedAt = time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	obligations, err := json.Marshal(c.Obligations)
	if err != nil {
		return fmt.Errorf("encoding obligations: %w", err)
	}
	var parsed []byte
	if c.Parsed != nil {
		parsed, err = json.Marshal(c.Parsed)
		if err != nil {
			return fmt.Errorf("encoding parsed fields: %w", err)
		}
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO contracts
		(id, contract_number, title, tenant, customer_id, filename, file_url, status, raw_text,
		 renewal_date, payment_terms, payment_frequency, total_value, obligations, parsed, error_msg, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ContractNumber, c.Title, c.Tenant, c.CustomerID, c.Filename, c.FileURL, c.Status, c.RawText,
		nullableTime(c.RenewalDate), c.PaymentTerms, c.PaymentFrequency, nullableFloat(c.TotalValue),
		string(obligations), nullableBytes(parsed), c.ErrorMsg,
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving contract: %w", err)
	}
	return nil
}

const contractColumns = `id, contract_number, title, tenant, customer_id, filename, file_url, status, raw_text,
	renewal_date, payment_terms, payment_frequency, total_value, obligations, parsed, error_msg, created_at, updated_at`

// GetContract returns the contract with the given id, or nil when it
// does not exist.
func (s *Store) GetContract(id string) (*model.Contract, error) {
	row := s.db.QueryRow(`SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading contract: %w", err)
	}
	return c, nil
}

// ListContracts returns a tenant's contracts, newest first, optionally
// filtered by status.
func (s *Store) ListContracts(tenant, status string) ([]*model.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE tenant = ?`
	args := []any{tenant}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ContractUpdate carries the mutable contract fields; nil means leave
// the field alone.
type ContractUpdate struct {
	Title        *string
	RenewalDate  *time.Time
	PaymentTerms *string
	TotalValue   *float64
	Status       *string
}

// UpdateContract applies a partial update and returns the fresh row,
// or nil when the contract does not exist.
func (s *Store) UpdateContract(id string, upd ContractUpdate) (*model.Contract, error) {
	c, err := s.GetContract(id)
	if err != nil || c == nil {
		return nil, err
	}

	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.RenewalDate != nil {
		c.RenewalDate = upd.RenewalDate
	}
	if upd.PaymentTerms != nil {
		c.PaymentTerms = *upd.PaymentTerms
	}
	if upd.TotalValue != nil {
		c.TotalValue = upd.TotalValue
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}

	if err := s.SaveContract(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteContract removes a contract row.
func (s *Store) DeleteContract(id string) error {
	if _, err := s.db.Exec(`DELETE FROM contracts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting contract: %w", err)
	}
	return nil
}

// CountContracts counts contracts in a status across all tenants.
func (s *Store) CountContracts(status string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM contracts WHERE status = ?`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contracts: %w", err)
	}
	return n, nil
}

// TotalContractValue sums total_value over active contracts.
func (s *Store) TotalContractValue() (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRow(`SELECT SUM(total_value) FROM contracts WHERE status = ?`, model.StatusActive).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing contract value: %w", err)
	}
	return total.Float64, nil
}

// ExpiringContracts returns active contracts whose renewal date falls
// within the window [now, now+days], soonest first.
func (s *Store) ExpiringContracts(days int) ([]*model.Contract, error) {
	now := time.Now().UTC()
	until := now.AddDate(0, 0, days)

	rows, err := s.db.Query(`SELECT `+contractColumns+` FROM contracts
		WHERE status = ? AND renewal_date IS NOT NULL AND renewal_date >= ? AND renewal_date <= ?
		ORDER BY renewal_date ASC`,
		model.StatusActive, now.Format(time.RFC3339), until.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying expiring contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// RecentContracts returns the most recently created contracts.
func (s *Store) RecentContracts(limit int) ([]*model.Contract, error) {
	rows, err := s.db.Query(`SELECT `+contractColumns+` FROM contracts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ActiveContracts returns every active contract across tenants.
func (s *Store) ActiveContracts() ([]*model.Contract, error) {
	rows, err := s.db.Query(`SELECT `+contractColumns+` FROM contracts WHERE status = ?`, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("querying active contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// AverageContractValue averages total_value over active contracts.
func (s *Store) AverageContractValue() (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRow(`SELECT AVG(total_value) FROM contracts WHERE status = ?`, model.StatusActive).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averaging contract value: %w", err)
	}
	return avg.Float64, nil
}

// CountCustomersWithActiveContracts counts distinct customers that
// hold at least one active contract.
func (s *Store) CountCustomersWithActiveContracts() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT customer_id) FROM contracts
		WHERE status = ? AND customer_id != ''`, model.StatusActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting customers with contracts: %w", err)
	}
	return n, nil
}

// CustomerValue pairs a customer name with their summed contract value.
type CustomerValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TopCustomersByValue ranks customers by the summed value of their
// active contracts.
func (s *Store) TopCustomersByValue(limit int) ([]CustomerValue, error) {
	rows, err := s.db.Query(`SELECT cu.name, SUM(co.total_value) AS total
		FROM customers cu JOIN contracts co ON co.customer_id = cu.id
		WHERE co.status = ?
		GROUP BY cu.id, cu.name
		ORDER BY total DESC
		LIMIT ?`, model.StatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking customers: %w", err)
	}
	defer rows.Close()

	var ranked []CustomerValue
	for rows.Next() {
		var (
			cv    CustomerValue
			total sql.NullFloat64
		)
		if err := rows.Scan(&cv.Name, &total); err != nil {
			return nil, fmt.Errorf("scanning customer value: %w", err)
		}
		cv.Value = total.Float64
		ranked = append(ranked, cv)
	}
	return ranked, rows.Err()
}

// EnsureCustomer returns the customer with the given name, creating it
// with the supplied email when it does not exist yet.
func (s *Store) EnsureCustomer(name, email string) (*model.Customer, error) {
	row := s.db.QueryRow(`SELECT id, name, email, company, phone, address, created_at, updated_at
		FROM customers WHERE name = ?`, name)
	existing, err := scanCustomer(row)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("loading customer: %w", err)
	}

	now := time.Now().UTC()
	customer := &model.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.Exec(`INSERT INTO customers (id, name, email, company, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID, customer.Name, customer.Email, customer.Company, customer.Phone, customer.Address,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return customer, nil
}

// CountCustomers counts all customers.
func (s *Store) CountCustomers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting customers: %w", err)
	}
	return n, nil
}

// UpsertCRMRecord replaces the stored row for the record's
// (source, source_id) pair.
func (s *Store) UpsertCRMRecord(rec *model.CRMRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.SyncedAt.IsZero() {
		rec.SyncedAt = time.Now().UTC()
	}

	var raw []byte
	if rec.Raw != nil {
		encoded, err := json.Marshal(rec.Raw)
		if err != nil {
			return fmt.Errorf("encoding raw record: %w", err)
		}
		raw = encoded
	}

	_, err := s.db.Exec(`INSERT INTO crm_records
		(id, customer_id, source, source_id, account_name, industry, annual_revenue, employee_count,
		 primary_contact, primary_email, last_activity_date, raw, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, source_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			account_name = excluded.account_name,
			industry = excluded.industry,
			annual_revenue = excluded.annual_revenue,
			employee_count = excluded.employee_count,
			primary_contact = excluded.primary_contact,
			primary_email = excluded.primary_email,
			last_activity_date = excluded.last_activity_date,
			raw = excluded.raw,
			synced_at = excluded.synced_at`,
		rec.ID, rec.CustomerID, rec.Source, rec.SourceID, rec.AccountName, rec.Industry,
		nullableFloat(rec.AnnualRevenue), nullableInt(rec.EmployeeCount),
		rec.PrimaryContact, rec.PrimaryEmail, nullableTime(rec.LastActivityDate),
		nullableBytes(raw), rec.SyncedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting crm record: %w", err)
	}
	return nil
}

const crmColumns = `id, customer_id, source, source_id, account_name, industry, annual_revenue,
	employee_count, primary_contact, primary_email, last_activity_date, raw, synced_at`

// LatestCRMRecord returns the most recently synced record for an
// account from one source, or nil when the source has never produced
// one.
func (s *Store) LatestCRMRecord(source, accountName string) (*model.CRMRecord, error) {
	row := s.db.QueryRow(`SELECT `+crmColumns+` FROM crm_records
		WHERE source = ? AND account_name = ? ORDER BY synced_at DESC LIMIT 1`,
		source, accountName)
	rec, err := scanCRMRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading crm record: %w", err)
	}
	return rec, nil
}

// ListCRMRecords pages through stored records, optionally filtered by
// source.
func (s *Store) ListCRMRecords(source string, offset, limit int) ([]*model.CRMRecord, error) {
	query := `SELECT ` + crmColumns + ` FROM crm_records`
	args := []any{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY synced_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing crm records: %w", err)
	}
	defer rows.Close()

	var records []*model.CRMRecord
	for rows.Next() {
		rec, err := scanCRMRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning crm record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SourceSyncStatus reports the last sync time and record count for one
// CRM source.
type SourceSyncStatus struct {
	LastSync    *time.Time `json:"last_sync"`
	RecordCount int        `json:"record_count"`
}

// SyncStatus summarizes sync state for one source.
func (s *Store) SyncStatus(source string) (*SourceSyncStatus, error) {
	var (
		last  sql.NullString
		count int
	)
	err := s.db.QueryRow(`SELECT MAX(synced_at), COUNT(*) FROM crm_records WHERE source = ?`, source).
		Scan(&last, &count)
	if err != nil {
		return nil, fmt.Errorf("querying sync status: %w", err)
	}

	status := &SourceSyncStatus{RecordCount: count}
	if last.Valid {
		if t, err := time.Parse(time.RFC3339, last.String); err == nil {
			status.LastSync = &t
		}
	}
	return status, nil
}

// RecentCRMRecords returns the most recently synced records.
func (s *Store) RecentCRMRecords(limit int) ([]*model.CRMRecord, error) {
	rows, err := s.db.Query(`SELECT `+crmColumns+` FROM crm_records ORDER BY synced_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying crm records: %w", err)
	}
	defer rows.Close()

	var records []*model.CRMRecord
	for rows.Next() {
		rec, err := scanCRMRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning crm record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*model.Contract, error) {
	var (
		c           model.Contract
		renewal     sql.NullString
		totalValue  sql.NullFloat64
		obligations sql.NullString
		parsed      sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&c.ID, &c.ContractNumber, &c.Title, &c.Tenant, &c.CustomerID, &c.Filename,
		&c.FileURL, &c.Status, &c.RawText, &renewal, &c.PaymentTerms, &c.PaymentFrequency,
		&totalValue, &obligations, &parsed, &c.ErrorMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if renewal.Valid {
		if t, err := time.Parse(time.RFC3339, renewal.String); err == nil {
			c.RenewalDate = &t
		}
	}
	if totalValue.Valid {
		c.TotalValue = &totalValue.Float64
	}
	if obligations.Valid && obligations.String != "" {
		if err := json.Unmarshal([]byte(obligations.String), &c.Obligations); err != nil {
			return nil, fmt.Errorf("decoding obligations: %w", err)
		}
	}
	if parsed.Valid && parsed.String != "" {
		var fields nlp.ContractFields
		if err := json.Unmarshal([]byte(parsed.String), &fields); err != nil {
			return nil, fmt.Errorf("decoding parsed fields: %w", err)
		}
		c.Parsed = &fields
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var (
		c         model.Customer
		createdAt string
		updatedAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Phone, &c.Address, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func scanCRMRecord(row rowScanner) (*model.CRMRecord, error) {
	var (
		rec          model.CRMRecord
		revenue      sql.NullFloat64
		employees    sql.NullInt64
		lastActivity sql.NullString
		raw          sql.NullString
		syncedAt     string
	)
	err := row.Scan(&rec.ID, &rec.CustomerID, &rec.Source, &rec.SourceID, &rec.AccountName,
		&rec.Industry, &revenue, &employees, &rec.PrimaryContact, &rec.PrimaryEmail,
		&lastActivity, &raw, &syncedAt)
	if err != nil {
		return nil, err
	}

	if revenue.Valid {
		rec.AnnualRevenue = &revenue.Float64
	}
	if employees.Valid {
		n := int(employees.Int64)
		rec.EmployeeCount = &n
	}
	if lastActivity.Valid {
		if t, err := time.Parse(time.RFC3339, lastActivity.String); err == nil {
			rec.LastActivityDate = &t
		}
	}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &rec.Raw); err != nil {
			return nil, fmt.Errorf("decoding raw record: %w", err)
		}
	}
	rec.SyncedAt, _ = time.Parse(time.RFC3339, syncedAt)
	return &rec, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
