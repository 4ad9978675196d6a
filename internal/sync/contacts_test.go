package sync

import (
	"context"
	"fmt"
	"testing"

	"waconsole/internal/database"
	"waconsole/internal/gateway"
	"waconsole/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	contacts    []gateway.Contact
	listErr     error
	pictures    map[string]string
	pictureErr  map[string]error
	pictureGets []string
}

func (d *fakeDirectory) GetAllContacts() ([]gateway.Contact, error) {
	return d.contacts, d.listErr
}

func (d *fakeDirectory) GetProfilePicture(phone string) (string, error) {
	d.pictureGets = append(d.pictureGets, phone)
	if err, ok := d.pictureErr[phone]; ok {
		return "", err
	}
	return d.pictures[phone], nil
}

type fakeStore struct {
	upserts   []database.ContactUpsert
	upsertErr map[string]error
	avatars   map[string]string
}

func (s *fakeStore) UpsertContact(_ context.Context, in database.ContactUpsert) (*models.Contact, error) {
	if err, ok := s.upsertErr[in.PhoneNumber]; ok {
		return nil, err
	}
	s.upserts = append(s.upserts, in)
	return &models.Contact{PhoneNumber: in.PhoneNumber}, nil
}

func (s *fakeStore) SetAvatarURL(_ context.Context, phone, avatarURL string) error {
	if s.avatars == nil {
		s.avatars = make(map[string]string)
	}
	s.avatars[phone] = avatarURL
	return nil
}

func newTestService(d *fakeDirectory, s *fakeStore) *Service {
	return NewService(d, s, zerolog.Nop(), 2, 0)
}

func TestSync_UpsertsAndBackfillsAvatars(t *testing.T) {
	directory := &fakeDirectory{
		contacts: []gateway.Contact{
			{JID: "31611111111@s.whatsapp.net", Name: "Anna", ImgURL: "https://cdn/a.jpg"},
			{JID: "31622222222@s.whatsapp.net", Name: "Ben"},
			{JID: "31633333333@s.whatsapp.net", PushName: "Cleo"},
		},
		pictures: map[string]string{
			"+31622222222": "https://cdn/b.jpg",
		},
	}
	store := &fakeStore{}

	result, err := newTestService(directory, store).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Synced)
	// One avatar came with the directory pull, one from the backfill;
	// Cleo's stays empty
	assert.Equal(t, 2, result.WithImages)
	assert.Equal(t, "https://cdn/b.jpg", store.avatars["+31622222222"])

	// Only contacts missing avatars get a picture lookup
	assert.ElementsMatch(t, []string{"+31622222222", "+31633333333"}, directory.pictureGets)
}

func TestSync_SkipsUnusablePhoneNumbers(t *testing.T) {
	directory := &fakeDirectory{
		contacts: []gateway.Contact{
			{JID: "status@broadcast", Name: "Broadcast"},
			{JID: "31611111111@s.whatsapp.net", Name: "Anna", ImgURL: "x"},
		},
	}
	store := &fakeStore{}

	result, err := newTestService(directory, store).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "+31611111111", store.upserts[0].PhoneNumber)
}

func TestSync_OneFailureDoesNotAbort(t *testing.T) {
	directory := &fakeDirectory{
		contacts: []gateway.Contact{
			{JID: "31611111111@s.whatsapp.net", ImgURL: "x"},
			{JID: "31622222222@s.whatsapp.net", ImgURL: "x"},
		},
	}
	store := &fakeStore{
		upsertErr: map[string]error{"+31611111111": fmt.Errorf("db down")},
	}

	result, err := newTestService(directory, store).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.WithImages)
}

func TestSync_AvatarFetchFailureTolerated(t *testing.T) {
	directory := &fakeDirectory{
		contacts: []gateway.Contact{
			{JID: "31611111111@s.whatsapp.net"},
		},
		pictureErr: map[string]error{"+31611111111": fmt.Errorf("rate limited")},
	}
	store := &fakeStore{}

	result, err := newTestService(directory, store).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.WithImages)
	assert.Empty(t, store.avatars)
}

func TestSync_DirectoryPullFailure(t *testing.T) {
	directory := &fakeDirectory{listErr: fmt.Errorf("gateway down")}
	store := &fakeStore{}

	result, err := newTestService(directory, store).Sync(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, store.upserts)
}
