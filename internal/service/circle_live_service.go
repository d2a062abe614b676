package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/middleware"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

const (
	liveRedisTTL       = 30 * time.Minute
	liveSendBufferSize = 32
	livePingInterval   = 30 * time.Second
)

// LiveConnectionOptions wraps metadata extracted during the HTTP upgrade.
type LiveConnectionOptions struct {
	UserID        uint
	CircleID      uint
	CorrelationID string
	Context       context.Context
}

// CircleLiveService runs the realtime room of each study circle: member chat
// and group Pomodoro timer events.
type CircleLiveService interface {
	ServeConnection(conn *websocket.Conn, opts LiveConnectionOptions)
	History(ctx context.Context, circleID, userID uint, query dto.LiveHistoryQuery) ([]dto.CircleMessageResponse, error)
	Broadcast(ctx context.Context, circleID, senderID uint, messageType, content string) (dto.CircleMessageResponse, error)
	Start(ctx context.Context)
}

type circleLiveService struct {
	repo         repository.CircleMessageRepository
	circles      CircleService
	redis        *redis.Client
	redisChannel string
	redisCache   string
	nats         *nats.Conn
	natsSubject  string
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	hub          *liveHub
	nodeID       string
}

type liveHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*liveClient]struct{}
	log   zerolog.Logger
}

type liveClient struct {
	conn    *websocket.Conn
	send    chan dto.CircleMessageResponse
	options LiveConnectionOptions
	service *circleLiveService
	closed  chan struct{}
	once    sync.Once
}

type liveEvent struct {
	Source  string                    `json:"source"`
	Message dto.CircleMessageResponse `json:"message"`
	SentAt  time.Time                 `json:"sent_at"`
}

// NewCircleLiveService creates the live room service. Redis and NATS relay
// messages between API replicas when configured.
func NewCircleLiveService(repo repository.CircleMessageRepository, circles CircleService, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) CircleLiveService {
	channel := ""
	cachePrefix := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":circles"
		cachePrefix = channelBase + ":circles:last"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".circles"
	}

	return &circleLiveService{
		repo:         repo,
		circles:      circles,
		redis:        redisClient,
		redisChannel: channel,
		redisCache:   cachePrefix,
		nats:         natsConn,
		natsSubject:  subject,
		validator:    validate,
		logger:       logger.With().Str("component", "circle_live_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/circle_live"),
		sanitizer:    bluemonday.StrictPolicy(),
		hub: &liveHub{
			rooms: make(map[uint]map[*liveClient]struct{}),
			log:   logger.With().Str("component", "circle_live_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *circleLiveService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// ServeConnection blocks until the client disconnects. Membership must be
// checked before the upgrade.
func (s *circleLiveService) ServeConnection(conn *websocket.Conn, opts LiveConnectionOptions) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	client := &liveClient{
		conn:    conn,
		send:    make(chan dto.CircleMessageResponse, liveSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)

	if last := s.fetchLastMessage(opts.Context, opts.CircleID); last != nil {
		select {
		case client.send <- *last:
		default:
		}
	}

	go client.writer()
	client.reader()
}

func (s *circleLiveService) History(ctx context.Context, circleID, userID uint, query dto.LiveHistoryQuery) ([]dto.CircleMessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}
	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.repo.ListByCircle(ctx, circleID, before, query.Limit)
	if err != nil {
		return nil, err
	}
	return dto.NewCircleMessageResponseSlice(messages), nil
}

// Broadcast stores a message and delivers it to every member connected to
// the circle's room.
func (s *circleLiveService) Broadcast(ctx context.Context, circleID, senderID uint, messageType, content string) (dto.CircleMessageResponse, error) {
	clean := sanitizeText(s.sanitizer, content)
	if clean == "" {
		return dto.CircleMessageResponse{}, errors.New("message content empty after sanitization")
	}
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("circle.id", int64(circleID)),
		attribute.Int64("circle.sender_id", int64(senderID)),
		attribute.String("circle.message_type", messageType),
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}
	spanCtx, span := s.tracer.Start(ctx, "circles.live.broadcast", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.CircleMessage{
		CircleID: circleID,
		SenderID: senderID,
		Type:     messageType,
		Content:  clean,
	}
	if err := s.repo.Save(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.CircleMessageResponse{}, err
	}

	response := dto.NewCircleMessageResponse(model)
	s.cacheLastMessage(spanCtx, response)
	s.hub.broadcast(circleID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish live circle event")
	}

	observability.LiveMessagesTotal().WithLabelValues(messageType).Inc()
	return response, nil
}

func (s *circleLiveService) processSend(ctx context.Context, client *liveClient, payload dto.LiveSendRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	_, err := s.Broadcast(ctx, client.options.CircleID, client.options.UserID, models.MessageTypeText, payload.Content)
	return err
}

func (s *circleLiveService) cacheKey(circleID uint) string {
	return fmt.Sprintf("%s:%d", s.redisCache, circleID)
}

func (s *circleLiveService) cacheLastMessage(ctx context.Context, message dto.CircleMessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal live message for cache")
		return
	}

	if err := s.redis.Set(ctx, s.cacheKey(message.CircleID), payload, liveRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache live message")
	}
}

func (s *circleLiveService) fetchLastMessage(ctx context.Context, circleID uint) *dto.CircleMessageResponse {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	result, err := s.redis.Get(ctx, s.cacheKey(circleID)).Result()
	if err != nil {
		return nil
	}

	var message dto.CircleMessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached live message")
		return nil
	}
	return &message
}

func (s *circleLiveService) publish(ctx context.Context, message dto.CircleMessageResponse) error {
	payload, err := json.Marshal(liveEvent{Source: s.nodeID, Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *circleLiveService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("live circle redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *circleLiveService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats live circle subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain live circle nats subscription")
		}
	}()
}

func (s *circleLiveService) handleEvent(data []byte) {
	var event liveEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid live circle event")
		return
	}
	if event.Source == s.nodeID {
		return
	}
	s.hub.broadcast(event.Message.CircleID, event.Message)
}

func (h *liveHub) register(client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	circleID := client.options.CircleID
	if _, exists := h.rooms[circleID]; !exists {
		h.rooms[circleID] = make(map[*liveClient]struct{})
	}
	h.rooms[circleID][client] = struct{}{}
	observability.LiveConnectionsActive().Inc()
	h.log.Debug().Uint("circle_id", circleID).Uint("user_id", client.options.UserID).Msg("live client connected")
}

func (h *liveHub) unregister(client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	circleID := client.options.CircleID
	if clients, ok := h.rooms[circleID]; ok {
		if _, ok := clients[client]; !ok {
			return
		}
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, circleID)
		}
		observability.LiveConnectionsActive().Dec()
	}
	h.log.Debug().Uint("circle_id", circleID).Uint("user_id", client.options.UserID).Msg("live client disconnected")
}

func (h *liveHub) broadcast(circleID uint, message dto.CircleMessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[circleID] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Uint("circle_id", circleID).Uint("user_id", client.options.UserID).Msg("dropping live message for slow client")
		}
	}
}

func (h *liveHub) size(circleID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[circleID])
}

func (c *liveClient) reader() {
	defer c.close()

	ctx := c.options.Context
	if c.options.CorrelationID != "" {
		ctx = middleware.ContextWithCorrelation(ctx, c.options.CorrelationID)
	}

	for {
		var payload dto.LiveSendRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("live read loop ended")
			return
		}

		if err := c.service.processSend(ctx, c, payload); err != nil {
			c.service.logger.Warn().Err(err).Uint("circle_id", c.options.CircleID).Msg("failed to process live message")
		}
	}
}

func (c *liveClient) writer() {
	defer c.close()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("live write loop terminated")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("live ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *liveClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
