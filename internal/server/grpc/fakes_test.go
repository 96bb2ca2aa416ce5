package grpc

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/export"
	"github.com/dmitrijs2005/paperswipe/internal/server/auth"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/dmitrijs2005/paperswipe/internal/server/services"
)

var testSecret = []byte("test-secret")

// fakeUsers keeps accounts in memory and signs real tokens. accessTTL is
// applied to tokens handed out by Login; refreshed tokens last an hour.
type fakeUsers struct {
	mu        sync.Mutex
	passwords map[string]string
	refresh   map[string]string
	accessTTL time.Duration
	refreshes int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{passwords: map[string]string{}, refresh: map[string]string{}, accessTTL: time.Hour}
}

func (f *fakeUsers) Register(_ context.Context, userName string, password []byte) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userName == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: empty credentials", common.ErrInvalidArgument)
	}
	if _, ok := f.passwords[userName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.passwords[userName] = string(password)
	return &models.User{ID: "id-" + userName, UserName: userName}, nil
}

func (f *fakeUsers) Login(_ context.Context, userName string, password []byte) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[userName]; !ok || pw != string(password) {
		return nil, common.ErrorUnauthorized
	}
	return f.issueLocked("id-"+userName, f.accessTTL)
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	userID, ok := f.refresh[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	delete(f.refresh, token)
	return f.issueLocked(userID, time.Hour)
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, testSecret)
}

func (f *fakeUsers) issueLocked(userID string, ttl time.Duration) (*services.TokenPair, error) {
	access, err := auth.GenerateToken(userID, testSecret, ttl)
	if err != nil {
		return nil, err
	}
	refresh, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	f.refresh[refresh] = userID
	return &services.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// fakeLibrary stores papers per user in memory.
type fakeLibrary struct {
	mu     sync.Mutex
	papers map[string][]*models.SavedPaper
	seq    int
	err    error
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{papers: map[string][]*models.SavedPaper{}}
}

func (f *fakeLibrary) Create(_ context.Context, userID string, p *models.SavedPaper) (*models.SavedPaper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, q := range f.papers[userID] {
		if q.PaperID == p.PaperID {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.seq++
	p.ID = fmt.Sprintf("remote-%d", f.seq)
	p.UserID = userID
	p.SavedAt = time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
	f.papers[userID] = append(f.papers[userID], p)
	return p, nil
}

func (f *fakeLibrary) find(userID, id string) (*models.SavedPaper, int) {
	for i, p := range f.papers[userID] {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (f *fakeLibrary) Update(_ context.Context, userID, id string, patch models.PaperPatch) (*models.SavedPaper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, _ := f.find(userID, id)
	if p == nil {
		return nil, common.ErrorNotFound
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
	return p, nil
}

func (f *fakeLibrary) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, i := f.find(userID, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.papers[userID] = slices.Delete(f.papers[userID], i, i+1)
	return nil
}

func (f *fakeLibrary) List(_ context.Context, userID, tag string) ([]*models.SavedPaper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.SavedPaper
	for _, p := range f.papers[userID] {
		if tag == "" || slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLibrary) Export(ctx context.Context, userID, format, tag string) (services.ExportLink, error) {
	fmtName, err := export.ParseFormat(format)
	if err != nil {
		return services.ExportLink{}, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	papers, err := f.List(ctx, userID, tag)
	if err != nil {
		return services.ExportLink{}, err
	}
	return services.ExportLink{
		URL:       "https://s3.example/exports/" + userID + "/x." + fmtName.Extension(),
		ExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Count:     len(papers),
	}, nil
}
