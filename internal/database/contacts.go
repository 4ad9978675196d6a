package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"waconsole/internal/models"
	"waconsole/internal/utils"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ContactService handles contact directory and CRM profile storage
type ContactService struct {
	db *sqlx.DB
}

// NewContactService creates a new contact service
func NewContactService(db *sqlx.DB) (*ContactService, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for contact service")
	}

	service := &ContactService{db: db}

	if err := service.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create contact tables: %w", err)
	}

	return service, nil
}

// CreateTables creates the contact and CRM profile tables
func (s *ContactService) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id SERIAL PRIMARY KEY,
			phone_number TEXT UNIQUE NOT NULL,
			jid TEXT NOT NULL DEFAULT '',
			display_name TEXT,
			push_name TEXT,
			avatar_url TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_business BOOLEAN NOT NULL DEFAULT FALSE,
			last_seen_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			raw_payload JSONB,
			synced_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_phone_number ON contacts(phone_number)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_display_name ON contacts(display_name)`,
		`CREATE TABLE IF NOT EXISTS crm_profiles (
			id SERIAL PRIMARY KEY,
			contact_id INTEGER UNIQUE NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			lifecycle_stage TEXT NOT NULL DEFAULT 'prospect',
			engagement_score INTEGER NOT NULL DEFAULT 0,
			preferred_stores TEXT[] NOT NULL DEFAULT '{}',
			dietary_restrictions TEXT[] NOT NULL DEFAULT '{}',
			shopping_persona TEXT,
			notes TEXT,
			tags TEXT[] NOT NULL DEFAULT '{}',
			total_messages INTEGER NOT NULL DEFAULT 0,
			total_conversations INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crm_profiles_contact_id ON crm_profiles(contact_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to run contact schema statement: %w", err)
		}
	}

	return nil
}

// ContactUpsert carries the fields written on every sync. The phone
// number is normalized before it becomes the conflict key.
type ContactUpsert struct {
	PhoneNumber string
	DisplayName string
	PushName    string
	AvatarURL   string
	IsVerified  bool
	IsBusiness  bool
	LastSeenAt  *time.Time
	RawPayload  []byte
}

// UpsertContact inserts or updates a contact by normalized phone number.
// There is never more than one row per phone number. A default CRM
// profile is created alongside new contacts.
func (s *ContactService) UpsertContact(ctx context.Context, in ContactUpsert) (*models.Contact, error) {
	phone, err := utils.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO contacts (
			phone_number, jid, display_name, push_name, avatar_url,
			is_verified, is_business, last_seen_at, is_active, raw_payload,
			synced_at, created_at, updated_at
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
			$6, $7, $8, TRUE, $9,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (phone_number) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), contacts.display_name),
			push_name = COALESCE(NULLIF(EXCLUDED.push_name, ''), contacts.push_name),
			avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), contacts.avatar_url),
			is_verified = EXCLUDED.is_verified,
			is_business = EXCLUDED.is_business,
			last_seen_at = COALESCE(EXCLUDED.last_seen_at, contacts.last_seen_at),
			is_active = TRUE,
			raw_payload = COALESCE(EXCLUDED.raw_payload, contacts.raw_payload),
			synced_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		RETURNING *
	`

	name := utils.NormalizeDisplayName(in.DisplayName)
	pushName := utils.NormalizeDisplayName(in.PushName)

	var contact models.Contact
	err = s.db.GetContext(ctx, &contact, query,
		phone, utils.PhoneToJID(phone), name, pushName, in.AvatarURL,
		in.IsVerified, in.IsBusiness, in.LastSeenAt, in.RawPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}

	if err := s.ensureProfile(ctx, contact.ID); err != nil {
		return nil, err
	}

	return &contact, nil
}

// ensureProfile creates the default CRM profile for a contact if absent.
func (s *ContactService) ensureProfile(ctx context.Context, contactID int) error {
	query := `
		INSERT INTO crm_profiles (contact_id)
		VALUES ($1)
		ON CONFLICT (contact_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, contactID); err != nil {
		return fmt.Errorf("failed to ensure CRM profile: %w", err)
	}
	return nil
}

// SetAvatarURL stores the avatar URL fetched during the sync backfill.
func (s *ContactService) SetAvatarURL(ctx context.Context, phone, avatarURL string) error {
	query := `
		UPDATE contacts
		SET avatar_url = $1, updated_at = CURRENT_TIMESTAMP
		WHERE phone_number = $2
	`
	res, err := s.db.ExecContext(ctx, query, avatarURL, phone)
	if err != nil {
		return fmt.Errorf("failed to set avatar URL: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %s: %w", phone, ErrNotFound)
	}
	return nil
}

// ListContacts returns a filtered page of the local contact directory
// plus the total match count.
func (s *ContactService) ListContacts(ctx context.Context, search string, limit, offset int) ([]models.Contact, int, error) {
	where := `WHERE is_active = TRUE`
	args := []interface{}{}

	if search != "" {
		where += ` AND (phone_number ILIKE $1 OR display_name ILIKE $1 OR push_name ILIKE $1)`
		args = append(args, "%"+strings.TrimSpace(search)+"%")
	}

	countQuery := `SELECT COUNT(*) FROM contacts ` + where
	var count int
	if err := s.db.GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT * FROM contacts %s
		ORDER BY display_name NULLS LAST, phone_number
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var contacts []models.Contact
	if err := s.db.SelectContext(ctx, &contacts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	// Ensure we return an empty slice, not nil
	if contacts == nil {
		contacts = []models.Contact{}
	}

	return contacts, count, nil
}

// GetByPhone finds one contact by normalized phone number.
func (s *ContactService) GetByPhone(ctx context.Context, rawPhone string) (*models.Contact, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	var contact models.Contact
	err = s.db.GetContext(ctx, &contact, `SELECT * FROM contacts WHERE phone_number = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %s: %w", phone, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// DeleteContact removes a contact. The CRM profile and any conversations
// (with their messages) go with it via ON DELETE CASCADE.
func (s *ContactService) DeleteContact(ctx context.Context, rawPhone string) error {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE phone_number = $1`, phone)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %s: %w", phone, ErrNotFound)
	}

	return nil
}

// GetProfile returns the CRM profile owned by a contact.
func (s *ContactService) GetProfile(ctx context.Context, rawPhone string) (*models.CRMProfile, error) {
	contact, err := s.GetByPhone(ctx, rawPhone)
	if err != nil {
		return nil, err
	}

	var profile models.CRMProfile
	err = s.db.GetContext(ctx, &profile, `SELECT * FROM crm_profiles WHERE contact_id = $1`, contact.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", contact.PhoneNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfile applies admin edits to a CRM profile. Only fields present
// in the update are written.
func (s *ContactService) UpdateProfile(ctx context.Context, rawPhone string, upd models.ProfileUpdate) (*models.CRMProfile, error) {
	contact, err := s.GetByPhone(ctx, rawPhone)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE crm_profiles SET
			lifecycle_stage = COALESCE($2, lifecycle_stage),
			engagement_score = COALESCE($3, engagement_score),
			preferred_stores = COALESCE($4, preferred_stores),
			dietary_restrictions = COALESCE($5, dietary_restrictions),
			shopping_persona = COALESCE($6, shopping_persona),
			notes = COALESCE($7, notes),
			updated_at = CURRENT_TIMESTAMP
		WHERE contact_id = $1
		RETURNING *
	`

	var stores, dietary interface{}
	if upd.PreferredStores != nil {
		stores = pq.Array(upd.PreferredStores)
	}
	if upd.DietaryRestrictions != nil {
		dietary = pq.Array(upd.DietaryRestrictions)
	}

	var profile models.CRMProfile
	err = s.db.GetContext(ctx, &profile, query, contact.ID,
		upd.LifecycleStage, upd.EngagementScore, stores, dietary,
		upd.ShoppingPersona, upd.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", contact.PhoneNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &profile, nil
}

// AddTag appends a tag server-side. Using array_append under a duplicate
// guard avoids the read-filter-resubmit lost-update race entirely.
func (s *ContactService) AddTag(ctx context.Context, rawPhone, tag string) (*models.CRMProfile, error) {
	contact, err := s.GetByPhone(ctx, rawPhone)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE crm_profiles
		SET tags = CASE WHEN $2 = ANY(tags) THEN tags ELSE array_append(tags, $2) END,
			updated_at = CURRENT_TIMESTAMP
		WHERE contact_id = $1
		RETURNING *
	`

	var profile models.CRMProfile
	err = s.db.GetContext(ctx, &profile, query, contact.ID, tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", contact.PhoneNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add tag: %w", err)
	}

	return &profile, nil
}

// RemoveTag removes a tag server-side with array_remove.
func (s *ContactService) RemoveTag(ctx context.Context, rawPhone, tag string) (*models.CRMProfile, error) {
	contact, err := s.GetByPhone(ctx, rawPhone)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE crm_profiles
		SET tags = array_remove(tags, $2), updated_at = CURRENT_TIMESTAMP
		WHERE contact_id = $1
		RETURNING *
	`

	var profile models.CRMProfile
	err = s.db.GetContext(ctx, &profile, query, contact.ID, tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", contact.PhoneNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove tag: %w", err)
	}

	return &profile, nil
}
