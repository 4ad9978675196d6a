// Package sync pulls the WhatsApp gateway's contact directory into the
// local contact table.
package sync

import (
	"context"
	"encoding/json"
	"time"

	"waconsole/internal/database"
	"waconsole/internal/gateway"
	"waconsole/internal/models"
	"waconsole/internal/utils"

	"github.com/rs/zerolog"
)

// Directory is the slice of the gateway API the sync needs.
type Directory interface {
	GetAllContacts() ([]gateway.Contact, error)
	GetProfilePicture(phone string) (string, error)
}

// ContactStore is the slice of the contact service the sync writes to.
type ContactStore interface {
	UpsertContact(ctx context.Context, in database.ContactUpsert) (*models.Contact, error)
	SetAvatarURL(ctx context.Context, phone, avatarURL string) error
}

// Result reports aggregate sync counts. Partial progress is never rolled
// back; already-upserted contacts stay upserted even if a later batch fails.
type Result struct {
	Synced     int
	WithImages int
	Total      int
}

// Service runs full directory pulls with avatar backfill.
type Service struct {
	directory  Directory
	store      ContactStore
	logger     zerolog.Logger
	batchSize  int
	batchDelay time.Duration
}

// NewService creates a new contact sync service
func NewService(directory Directory, store ContactStore, logger zerolog.Logger, batchSize, batchDelayMs int) *Service {
	if batchSize <= 0 {
		batchSize = 5
	}
	if batchDelayMs < 0 {
		batchDelayMs = 500
	}
	return &Service{
		directory:  directory,
		store:      store,
		logger:     logger.With().Str("component", "contact-sync").Logger(),
		batchSize:  batchSize,
		batchDelay: time.Duration(batchDelayMs) * time.Millisecond,
	}
}

// Sync pulls the full contact list, upserts each contact by phone number
// and then backfills missing avatars in small batches with a fixed
// inter-batch delay to respect upstream rate limits. One contact's
// avatar failure never aborts the batch or the sync.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	contacts, err := s.directory.GetAllContacts()
	if err != nil {
		return nil, err
	}

	result := &Result{Total: len(contacts)}
	var missingAvatar []string

	for _, gc := range contacts {
		phone := gc.Phone
		if phone == "" {
			phone = gc.JID
		}
		normalized, err := utils.NormalizePhone(phone)
		if err != nil {
			s.logger.Warn().Err(err).Str("jid", gc.JID).Msg("Skipping contact with unusable phone number")
			continue
		}

		raw, err := json.Marshal(gc)
		if err != nil {
			raw = nil
		}

		var lastSeen *time.Time
		if gc.LastSeen != nil {
			t := time.Unix(*gc.LastSeen, 0).UTC()
			lastSeen = &t
		}

		if _, err := s.store.UpsertContact(ctx, database.ContactUpsert{
			PhoneNumber: normalized,
			DisplayName: gc.Name,
			PushName:    gc.PushName,
			AvatarURL:   gc.ImgURL,
			IsVerified:  gc.IsVerified,
			IsBusiness:  gc.IsBusiness,
			LastSeenAt:  lastSeen,
			RawPayload:  raw,
		}); err != nil {
			s.logger.Error().Err(err).Str("phone", normalized).Msg("Failed to upsert contact")
			continue
		}

		result.Synced++
		if gc.ImgURL != "" {
			result.WithImages++
		} else {
			missingAvatar = append(missingAvatar, normalized)
		}
	}

	result.WithImages += s.backfillAvatars(ctx, missingAvatar)

	s.logger.Info().
		Int("synced", result.Synced).
		Int("withImages", result.WithImages).
		Int("total", result.Total).
		Msg("Contact directory sync complete")

	return result, nil
}

// backfillAvatars fetches avatars one contact at a time in batches,
// sleeping between batches. Returns how many avatars were stored.
func (s *Service) backfillAvatars(ctx context.Context, phones []string) int {
	fetched := 0

	for start := 0; start < len(phones); start += s.batchSize {
		end := start + s.batchSize
		if end > len(phones) {
			end = len(phones)
		}

		for _, phone := range phones[start:end] {
			url, err := s.directory.GetProfilePicture(phone)
			if err != nil {
				s.logger.Warn().Err(err).Str("phone", phone).Msg("Avatar fetch failed, contact stored without avatar")
				continue
			}
			if url == "" {
				continue
			}
			if err := s.store.SetAvatarURL(ctx, phone, url); err != nil {
				s.logger.Warn().Err(err).Str("phone", phone).Msg("Failed to store avatar URL")
				continue
			}
			fetched++
		}

		if end < len(phones) {
			select {
			case <-ctx.Done():
				s.logger.Warn().Msg("Avatar backfill cancelled between batches")
				return fetched
			case <-time.After(s.batchDelay):
			}
		}
	}

	return fetched
}
