package core

import (
	"context"
	"strings"
)

// fakeContacts is an in-memory ContactDirectory for tests
type fakeContacts struct {
	contacts map[string]*Contact
	err      error
}

func newFakeContacts(contacts ...*Contact) *fakeContacts {
	f := &fakeContacts{contacts: make(map[string]*Contact)}
	for _, c := range contacts {
		f.contacts[strings.ToLower(c.Email)] = c
	}
	return f
}

func (f *fakeContacts) Lookup(ctx context.Context, address string) (*Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.contacts[strings.ToLower(address)]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (f *fakeContacts) Upsert(ctx context.Context, contact *Contact) error {
	f.contacts[strings.ToLower(contact.Email)] = contact
	return nil
}

// fakeLanguage is a canned LanguageService for tests
type fakeLanguage struct {
	tone      *ToneVector
	toneErr   error
	inference *AuthorityInference
	inferErr  error
}

func (f *fakeLanguage) AnalyzeTone(ctx context.Context, text string) (*ToneVector, error) {
	return f.tone, f.toneErr
}

func (f *fakeLanguage) InferAuthority(ctx context.Context, name, address, signature string) (*AuthorityInference, error) {
	return f.inference, f.inferErr
}

// fakeHistoryStore is an in-memory ResponseHistoryStore for tests
type fakeHistoryStore struct {
	records   map[string]*ResponseHistoryRecord
	getErr    error
	createErr error
	updateErr error
}

func newFakeHistoryStore(records ...*ResponseHistoryRecord) *fakeHistoryStore {
	f := &fakeHistoryStore{records: make(map[string]*ResponseHistoryRecord)}
	for _, r := range records {
		f.records[r.SenderEmail] = r
	}
	return f
}

func (f *fakeHistoryStore) Get(ctx context.Context, sender string) (*ResponseHistoryRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.records[sender]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (f *fakeHistoryStore) Create(ctx context.Context, sender string) (*ResponseHistoryRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	record := &ResponseHistoryRecord{SenderEmail: sender, EmailsReceived: 1}
	f.records[sender] = record
	copied := *record
	return &copied, nil
}

func (f *fakeHistoryStore) Update(ctx context.Context, record *ResponseHistoryRecord) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	copied := *record
	f.records[record.SenderEmail] = &copied
	return nil
}

// fakeArchive records Archive calls
type fakeArchive struct {
	archived []string
	err      error
}

func (f *fakeArchive) Archive(ctx context.Context, email *Email) error {
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, email.ID)
	return nil
}

// stubExtractor returns a fixed component or error
type stubExtractor struct {
	component ScoreComponent
	err       error
}

func (s *stubExtractor) CalculateScore(ctx context.Context, email *Email) (ScoreComponent, error) {
	return s.component, s.err
}
