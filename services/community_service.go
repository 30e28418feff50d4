package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/niveshipo/backend/database"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/shared"
	"github.com/sirupsen/logrus"
)

// communityStoreKey is the fixed namespace key the board is persisted under
const communityStoreKey = "nivesh_community_v3"

var (
	codenameAdjectives = []string{"Neon", "Cyber", "Quant", "Alpha", "SME", "Bull", "Void", "Lunar", "Global", "Prime"}
	codenameNouns      = []string{"Hunter", "Rider", "Whale", "Prophet", "Node", "Pulse", "Ape", "Analyst", "Seeker", "Ghost"}
)

// CommunityService manages the anonymous community board, the only durably
// persisted data in the system. The message list is read once at startup and
// rewritten wholesale (newest first) on each post.
type CommunityService struct {
	db *badger.DB

	mutex    sync.Mutex
	messages []models.CommunityMessage
}

// NewCommunityService loads the board from the store, seeding starter
// messages when the key is absent
func NewCommunityService(db *badger.DB) (*CommunityService, error) {
	s := &CommunityService{db: db}

	stored, err := database.Get(db, communityStoreKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read community board: %w", err)
	}

	if stored == nil {
		s.messages = seedMessages()
		logrus.Info("Community board initialized with seed messages")
		return s, nil
	}

	if err := json.Unmarshal(stored, &s.messages); err != nil {
		shared.NewServiceError(
			shared.ErrorCategoryStorage,
			"CORRUPT_BOARD",
			"stored community board is not valid JSON, reseeding",
			"Community_Service",
			"load",
			false,
			err,
		).LogError()
		s.messages = seedMessages()
	}

	return s, nil
}

// Messages returns the board newest first
func (s *CommunityService) Messages() []models.CommunityMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := make([]models.CommunityMessage, len(s.messages))
	copy(result, s.messages)
	return result
}

// Post validates and prepends a new message, then persists the whole list
func (s *CommunityService) Post(text string, msgType models.CommunityMessageType) (*models.CommunityMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"EMPTY_MESSAGE",
			"message text cannot be empty",
			"Community_Service",
			"post",
			false,
			nil,
		)
	}

	switch msgType {
	case models.MessageTypeSuggestion, models.MessageTypeFeedback, models.MessageTypeGeneral:
	default:
		msgType = models.MessageTypeGeneral
	}

	message := models.CommunityMessage{
		ID:        uuid.NewString(),
		Codename:  generateCodename(),
		Text:      text,
		Timestamp: "Just now",
		Type:      msgType,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	updated := append([]models.CommunityMessage{message}, s.messages...)

	encoded, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode community board: %w", err)
	}
	if err := database.Set(s.db, communityStoreKey, encoded); err != nil {
		return nil, fmt.Errorf("failed to persist community board: %w", err)
	}

	s.messages = updated
	return &message, nil
}

// generateCodename produces an anonymous handle like "Alpha Seeker #882"
func generateCodename() string {
	adjective := codenameAdjectives[rand.Intn(len(codenameAdjectives))]
	noun := codenameNouns[rand.Intn(len(codenameNouns))]
	return fmt.Sprintf("%s %s #%d", adjective, noun, 100+rand.Intn(900))
}

func seedMessages() []models.CommunityMessage {
	return []models.CommunityMessage{
		{
			ID:        "1",
			Codename:  "Alpha Seeker #882",
			Text:      "The AI risk scoring is a game changer for retail. Can we get a \"Compare\" feature for SME vs Mainboard stats?",
			Timestamp: "2 hours ago",
			Type:      models.MessageTypeSuggestion,
		},
		{
			ID:        "2",
			Codename:  "Cyber Whale #104",
			Text:      "Design is 10/10. Dark mode is very easy on the eyes during late-night market research.",
			Timestamp: "5 hours ago",
			Type:      models.MessageTypeFeedback,
		},
	}
}
