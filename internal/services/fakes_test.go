package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.DiscordID == user.DiscordID {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByDiscordID(_ context.Context, discordID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.DiscordID == discordID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByInviteCode(_ context.Context, code string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.InviteCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

// fakeConnectionRepo is an in-memory ConnectionRepository enforcing the same
// unordered-pair uniqueness the real unique index provides
type fakeConnectionRepo struct {
	mu     sync.Mutex
	nextID uint
	conns  map[uint]*models.Connection
	users  *fakeUserRepo
}

func newFakeConnectionRepo(users *fakeUserRepo) *fakeConnectionRepo {
	return &fakeConnectionRepo{nextID: 1, conns: map[uint]*models.Connection{}, users: users}
}

func (f *fakeConnectionRepo) CreateConnection(_ context.Context, conn *models.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pairKey := models.PairKeyFor(conn.RequesterID, conn.AddresseeID)
	for _, c := range f.conns {
		if c.PairKey == pairKey {
			return apperrors.ErrAlreadyPending
		}
	}
	conn.ID = f.nextID
	conn.PairKey = pairKey
	f.nextID++
	cp := *conn
	f.conns[conn.ID] = &cp
	return nil
}

func (f *fakeConnectionRepo) GetConnectionByID(_ context.Context, id uint) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConnectionRepo) GetConnectionByPair(_ context.Context, userA, userB uint) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pairKey := models.PairKeyFor(userA, userB)
	for _, c := range f.conns {
		if c.PairKey == pairKey {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConnectionRepo) CountAccepted(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, c := range f.conns {
		if c.Status == models.ConnectionStatusAccepted && (c.RequesterID == userID || c.AddresseeID == userID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeConnectionRepo) UpdateConnectionStatus(_ context.Context, id uint, status models.ConnectionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conns[id]; ok {
		c.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeConnectionRepo) DeleteConnection(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, id)
	return nil
}

func (f *fakeConnectionRepo) GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error) {
	f.mu.Lock()
	friendIDs := []uint{}
	for _, c := range f.conns {
		if c.Status != models.ConnectionStatusAccepted {
			continue
		}
		if c.RequesterID == userID {
			friendIDs = append(friendIDs, c.AddresseeID)
		} else if c.AddresseeID == userID {
			friendIDs = append(friendIDs, c.RequesterID)
		}
	}
	f.mu.Unlock()

	friends := []models.User{}
	for _, id := range friendIDs {
		u, err := f.users.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		friends = append(friends, *u)
	}
	return friends, nil
}

func (f *fakeConnectionRepo) GetPendingRequests(_ context.Context, addresseeID uint) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Connection{}
	for _, c := range f.conns {
		if c.AddresseeID == addresseeID && c.Status == models.ConnectionStatusPending {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeMediaRepo is an in-memory MediaRepository
type fakeMediaRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*models.MediaItem
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{nextID: 1, items: map[uint]*models.MediaItem{}}
}

func (f *fakeMediaRepo) CreateMediaItem(_ context.Context, item *models.MediaItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = f.nextID
	f.nextID++
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeMediaRepo) GetMediaItemByID(_ context.Context, id uint) (*models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMediaRepo) GetMediaBySender(_ context.Context, senderID uint, page, limit int) ([]models.MediaItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := []models.MediaItem{}
	for _, item := range f.items {
		if item.SenderID == senderID {
			items = append(items, *item)
		}
	}
	return items, int64(len(items)), nil
}

func (f *fakeMediaRepo) DeleteMediaItem(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeMediaRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// fakeDeliveryRepo is an in-memory DeliveryRepository
type fakeDeliveryRepo struct {
	mu      sync.Mutex
	records []models.DeliveryRecord
}

func (f *fakeDeliveryRepo) CreateDeliveryRecord(_ context.Context, record *models.DeliveryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeDeliveryRepo) CountByMediaItem(_ context.Context, mediaItemID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.records {
		if r.MediaItemID == mediaItemID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDeliveryRepo) MarkViewed(_ context.Context, mediaItemID, recipientID uint) error {
	return nil
}

// fakeMomentRepo is an in-memory MomentRepository
type fakeMomentRepo struct {
	mu      sync.Mutex
	moments []models.Moment
}

func (f *fakeMomentRepo) InsertMoment(_ context.Context, moment *models.Moment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moments = append(f.moments, *moment)
	return nil
}

func (f *fakeMomentRepo) GetMomentsByRecipient(_ context.Context, recipientID uint, skip, limit int64) ([]models.Moment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Moment{}
	for _, m := range f.moments {
		if m.RecipientID == recipientID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMomentRepo) DeleteMomentsByMediaItem(_ context.Context, mediaItemID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.moments[:0]
	for _, m := range f.moments {
		if m.MediaItemID != mediaItemID {
			kept = append(kept, m)
		}
	}
	f.moments = kept
	return nil
}

// fakeChannel is an in-memory ChannelStore
type fakeChannel struct {
	mu        sync.Mutex
	nextMsgID int
	stored    map[string][]byte // messageID -> data
	urls      map[string]string // messageID -> url
	sendErr   error
	fetchErr  error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{nextMsgID: 1, stored: map[string][]byte{}, urls: map[string]string{}}
}

func (f *fakeChannel) SendAttachment(_ context.Context, filename, contentType string, data []byte, note string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", "", f.sendErr
	}
	msgID := fmt.Sprintf("msg-%d", f.nextMsgID)
	f.nextMsgID++
	f.stored[msgID] = data
	f.urls[msgID] = "https://cdn.example.com/" + msgID
	return "chan-1", msgID, nil
}

func (f *fakeChannel) AttachmentURL(_ context.Context, channelID, messageID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return f.urls[messageID], nil
}

// fakeNotifier is an in-memory Notifier with per-recipient failure injection
type fakeNotifier struct {
	mu       sync.Mutex
	failWith map[string]error // discordID -> error
	sent     []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failWith: map[string]error{}}
}

func (f *fakeNotifier) SendDirect(_ context.Context, recipientDiscordID string, msg DirectMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failWith[recipientDiscordID]; ok {
		return err
	}
	f.sent = append(f.sent, recipientDiscordID)
	return nil
}
