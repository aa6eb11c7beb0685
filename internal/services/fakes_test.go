package services

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) GetByID(userID string) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, apperrors.NotFound("user not found")
}

type fakeProfileStore struct {
	profiles map[string]*models.PilotProfile
	packages map[string]*models.ServicePackage
}

func (f *fakeProfileStore) GetByID(profileID string) (*models.PilotProfile, error) {
	if profile, ok := f.profiles[profileID]; ok {
		return profile, nil
	}
	return nil, apperrors.NotFound("pilot profile not found")
}

func (f *fakeProfileStore) GetByUserID(userID string) (*models.PilotProfile, error) {
	for _, profile := range f.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, apperrors.NotFound("pilot profile not found")
}

func (f *fakeProfileStore) GetServicePackage(packageID string) (*models.ServicePackage, error) {
	if pkg, ok := f.packages[packageID]; ok {
		return pkg, nil
	}
	return nil, apperrors.NotFound("service package not found")
}

type fakeBookingStore struct {
	bookings map[string]*models.Booking
	nextID   int

	// staleStatus makes GetByID serve an out-of-date status for a
	// booking while the backing map holds the real one, simulating a
	// concurrent writer landing between the read and the update
	staleStatus map[string]models.BookingStatus
}

func (f *fakeBookingStore) Create(booking *models.Booking) error {
	f.nextID++
	booking.ID = fmt.Sprintf("booking-%d", f.nextID)
	booking.CreatedAt = time.Now()
	if f.bookings == nil {
		f.bookings = map[string]*models.Booking{}
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingStore) GetByID(bookingID string) (*models.Booking, error) {
	if booking, ok := f.bookings[bookingID]; ok {
		copied := *booking
		if stale, ok := f.staleStatus[bookingID]; ok {
			copied.Status = stale
		}
		return &copied, nil
	}
	return nil, apperrors.NotFound("booking not found")
}

func (f *fakeBookingStore) UpdateStatus(bookingID string, from, to models.BookingStatus) (models.BookingStatus, error) {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return "", apperrors.NotFound("booking not found")
	}
	if booking.Status != from {
		return "", apperrors.InvalidState("cannot set a %s booking to %s", booking.Status, to)
	}
	booking.Status = to
	return booking.Status, nil
}

func (f *fakeBookingStore) ListDetailsByClient(clientID string) ([]models.BookingDetail, error) {
	var details []models.BookingDetail
	for _, booking := range f.bookings {
		if booking.ClientID == clientID {
			details = append(details, models.BookingDetail{Booking: *booking})
		}
	}
	return details, nil
}

func (f *fakeBookingStore) ListDetailsByPilotProfile(profileID string) ([]models.BookingDetail, error) {
	var details []models.BookingDetail
	for _, booking := range f.bookings {
		if booking.PilotProfileID == profileID {
			details = append(details, models.BookingDetail{Booking: *booking})
		}
	}
	return details, nil
}

type fakePaymentStore struct {
	payments map[string]*models.Payment // by payment id
	bookings *fakeBookingStore
	nextID   int
}

func (f *fakePaymentStore) Create(payment *models.Payment) error {
	f.nextID++
	payment.ID = fmt.Sprintf("payment-%d", f.nextID)
	payment.CreatedAt = time.Now()
	if f.payments == nil {
		f.payments = map[string]*models.Payment{}
	}
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentStore) GetByBookingID(bookingID string) (*models.Payment, error) {
	for _, payment := range f.payments {
		if payment.BookingID == bookingID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) GetByIntentID(intentID string) (*models.Payment, error) {
	for _, payment := range f.payments {
		if payment.ProviderIntentID == intentID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("payment not found")
}

func (f *fakePaymentStore) ReplaceIntent(paymentID, intentID string, amount int64) error {
	payment, ok := f.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment not found")
	}
	payment.ProviderIntentID = intentID
	payment.Amount = amount
	payment.Status = models.PaymentStatusPending
	payment.CompletedAt = nil
	return nil
}

func (f *fakePaymentStore) UpdateStatus(paymentID string, status models.PaymentStatus) error {
	payment, ok := f.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment not found")
	}
	payment.Status = status
	return nil
}

func (f *fakePaymentStore) MarkSucceeded(paymentID, bookingID string) (bool, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return false, apperrors.NotFound("payment not found")
	}
	if payment.Status == models.PaymentStatusSucceeded {
		return false, nil
	}
	now := time.Now()
	payment.Status = models.PaymentStatusSucceeded
	payment.CompletedAt = &now
	if f.bookings != nil {
		if booking, ok := f.bookings.bookings[bookingID]; ok {
			booking.Status = models.BookingStatusPaid
		}
	}
	return true, nil
}

type fakeConversationStore struct {
	conversations map[string]*models.Conversation
	nextID        int
}

func (f *fakeConversationStore) GetByID(conversationID string) (*models.Conversation, error) {
	if conversation, ok := f.conversations[conversationID]; ok {
		return conversation, nil
	}
	return nil, apperrors.NotFound("conversation not found")
}

func (f *fakeConversationStore) GetByParticipants(clientID, pilotProfileID string) (*models.Conversation, error) {
	for _, conversation := range f.conversations {
		if conversation.ClientID == clientID && conversation.PilotProfileID == pilotProfileID {
			return conversation, nil
		}
	}
	return nil, nil
}

func (f *fakeConversationStore) Create(clientID, pilotProfileID string) (*models.Conversation, error) {
	f.nextID++
	conversation := &models.Conversation{
		ID:             fmt.Sprintf("conv-%d", f.nextID),
		ClientID:       clientID,
		PilotProfileID: pilotProfileID,
		CreatedAt:      time.Now(),
		LastMessageAt:  time.Now(),
	}
	if f.conversations == nil {
		f.conversations = map[string]*models.Conversation{}
	}
	f.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (f *fakeConversationStore) ListByClient(clientID string) ([]models.ConversationSummary, error) {
	var summaries []models.ConversationSummary
	for _, conversation := range f.conversations {
		if conversation.ClientID == clientID {
			summaries = append(summaries, models.ConversationSummary{Conversation: *conversation})
		}
	}
	return summaries, nil
}

func (f *fakeConversationStore) ListByPilotProfile(pilotProfileID string) ([]models.ConversationSummary, error) {
	var summaries []models.ConversationSummary
	for _, conversation := range f.conversations {
		if conversation.PilotProfileID == pilotProfileID {
			summaries = append(summaries, models.ConversationSummary{Conversation: *conversation})
		}
	}
	return summaries, nil
}

type fakeMessageStore struct {
	messages  []*models.Message
	readCalls []string // conversation ids passed to MarkConversationRead
	nextID    int
}

func (f *fakeMessageStore) Insert(conversationID, senderID string, senderType models.SenderType, content string) (*models.Message, error) {
	f.nextID++
	message := &models.Message{
		ID:             fmt.Sprintf("msg-%d", f.nextID),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	f.messages = append(f.messages, message)
	return message, nil
}

func (f *fakeMessageStore) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	for _, message := range f.messages {
		if message.ConversationID == conversationID {
			messages = append(messages, *message)
		}
	}
	return messages, nil
}

func (f *fakeMessageStore) MarkConversationRead(conversationID, readerID string) (int64, error) {
	f.readCalls = append(f.readCalls, conversationID)
	var marked int64
	for _, message := range f.messages {
		if message.ConversationID == conversationID && message.SenderID != readerID && !message.IsRead {
			message.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (f *fakeMessageStore) UnreadCountForClient(clientID string) (int64, error) {
	return 0, nil
}

func (f *fakeMessageStore) UnreadCountForPilotProfile(pilotProfileID string) (int64, error) {
	return 0, nil
}

type fakeReviewStore struct {
	reviews []*models.Review
	nextID  int
}

func (f *fakeReviewStore) Create(review *models.Review) error {
	f.nextID++
	review.ID = fmt.Sprintf("review-%d", f.nextID)
	review.CreatedAt = time.Now()
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewStore) ListByPilotProfile(profileID string) ([]models.ReviewDetail, error) {
	var details []models.ReviewDetail
	for _, review := range f.reviews {
		if review.PilotProfileID == profileID {
			details = append(details, models.ReviewDetail{Review: *review})
		}
	}
	return details, nil
}

type notice struct {
	userID  string
	typ     models.NotificationType
	title   string
	message string
}

type fakeNotifier struct {
	notices []notice
}

func (f *fakeNotifier) Notify(userID string, notificationType models.NotificationType, title, message string, link, relatedID *string) {
	f.notices = append(f.notices, notice{
		userID:  userID,
		typ:     notificationType,
		title:   title,
		message: message,
	})
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

type fakeProvider struct {
	intent      *PaymentIntent
	createErr   error
	retrieveErr error
	created     int
}

func (f *fakeProvider) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", f.created),
		ClientSecret: fmt.Sprintf("pi_%d_secret", f.created),
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
	}, nil
}

func (f *fakeProvider) RetrieveIntent(intentID string) (*PaymentIntent, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	intent := *f.intent
	intent.ID = intentID
	return &intent, nil
}
