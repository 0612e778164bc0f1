package translation

import (
	"context"
	"errors"
	"strings"

	"github.com/richxcame/pairchat/internal/messages"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/validation"
	"go.uber.org/zap"
)

// Service orchestrates detection, caching and machine translation.
// Cache faults never fail a request; only provider errors do.
type Service struct {
	repo     RepositoryInterface
	provider ProviderInterface
	messages MessageStore
	detect   func(string) LanguageCode
}

// NewService creates a new translation service
func NewService(repo RepositoryInterface, provider ProviderInterface, messages MessageStore) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		messages: messages,
		detect:   Detect,
	}
}

// Translate returns the translation of a message, from cache when possible
func (s *Service) Translate(ctx context.Context, req *TranslateRequest) (*TranslateResult, error) {
	req.MessageID = strings.TrimSpace(req.MessageID)
	if req.SourceLanguage == "" {
		req.SourceLanguage = SourceAuto
	}

	log := logger.WithContext(ctx).With(
		zap.String("operation", "translate"),
		zap.String("message_id", req.MessageID),
		zap.String("target_language", req.TargetLanguage),
	)

	if err := validation.ValidateStruct(req); err != nil {
		requestsTotal.WithLabelValues("rejected").Inc()
		var valErr *validation.ValidationError
		if errors.As(err, &valErr) {
			log.Info("translation request rejected", zap.Any("details", valErr.Errors))
			return nil, newInvalidRequest("invalid translation request", valErr.Errors)
		}
		return nil, newInvalidRequest("invalid translation request", nil)
	}
	target := LanguageCode(req.TargetLanguage)

	original, err := s.messages.GetMessageText(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, messages.ErrNotFound) {
			requestsTotal.WithLabelValues("rejected").Inc()
			log.Info("message not found")
			return nil, newMessageNotFound(err)
		}
		requestsTotal.WithLabelValues("failed").Inc()
		log.Error("failed to load message", zap.Error(err))
		return nil, newTranslationFailed(err)
	}
	if strings.TrimSpace(original) == "" {
		requestsTotal.WithLabelValues("rejected").Inc()
		return nil, newInvalidRequest("message has no text to translate", map[string]string{
			"messageId": "message has no text to translate",
		})
	}

	source := LanguageCode(req.SourceLanguage)
	if req.SourceLanguage == SourceAuto {
		source = s.detect(original)
	}
	log = log.With(zap.String("source_language", string(source)))

	if source == target {
		requestsTotal.WithLabelValues("rejected").Inc()
		log.Info("source and target language are the same")
		return nil, newInvalidRequest("source and target language are the same", map[string]string{
			"targetLanguage": "targetLanguage must differ from the source language",
		})
	}

	cached, err := s.repo.Lookup(ctx, req.MessageID, source, target)
	switch {
	case err != nil:
		cacheTotal.WithLabelValues("lookup_error").Inc()
		log.Warn("translation cache lookup failed, continuing without cache", zap.Error(err))
	case cached != nil:
		cacheTotal.WithLabelValues("hit").Inc()
		requestsTotal.WithLabelValues("cache_hit").Inc()
		return &TranslateResult{
			MessageID:      req.MessageID,
			SourceLanguage: source,
			TargetLanguage: target,
			TranslatedText: cached.TranslatedText,
			OriginalText:   original,
			Cached:         true,
		}, nil
	default:
		cacheTotal.WithLabelValues("miss").Inc()
	}

	translated, err := s.provider.Translate(ctx, original, source, target)
	if err != nil {
		requestsTotal.WithLabelValues("failed").Inc()
		var provErr *Error
		if errors.As(err, &provErr) {
			log.Warn("machine translation failed",
				zap.String("kind", string(provErr.Kind)),
				zap.Error(err),
			)
			return nil, provErr
		}
		log.Error("machine translation failed unexpectedly", zap.Error(err))
		return nil, newTranslationFailed(err)
	}

	if _, err := s.repo.Store(ctx, req.MessageID, source, target, translated); err != nil {
		if IsDuplicate(err) {
			cacheTotal.WithLabelValues("duplicate").Inc()
			log.Info("translation already cached by a concurrent request")
		} else {
			cacheTotal.WithLabelValues("store_error").Inc()
			log.Warn("failed to cache translation", zap.Error(err))
		}
	} else {
		cacheTotal.WithLabelValues("stored").Inc()
	}

	requestsTotal.WithLabelValues("translated").Inc()
	return &TranslateResult{
		MessageID:      req.MessageID,
		SourceLanguage: source,
		TargetLanguage: target,
		TranslatedText: translated,
		OriginalText:   original,
		Cached:         false,
	}, nil
}

// ListTranslations returns cached translations of a message, newest first
func (s *Service) ListTranslations(ctx context.Context, messageID string, req *ListRequest) ([]*Translation, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, newInvalidRequest("invalid message id", map[string]string{"messageId": "messageId is required"})
	}
	if err := validation.ValidateStruct(req); err != nil {
		var valErr *validation.ValidationError
		if errors.As(err, &valErr) {
			return nil, newInvalidRequest("invalid query", valErr.Errors)
		}
		return nil, newInvalidRequest("invalid query", nil)
	}

	var target *LanguageCode
	if req.TargetLanguage != "" {
		l := LanguageCode(req.TargetLanguage)
		target = &l
	}

	translations, err := s.repo.ListByMessage(ctx, messageID, target)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list translations",
			zap.String("operation", "list_translations"),
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return nil, newTranslationFailed(err)
	}
	return translations, nil
}

// GetPreference returns the display preference, defaulting to showing the original
func (s *Service) GetPreference(ctx context.Context, userRole, messageID string) (*Preference, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, newInvalidRequest("invalid message id", map[string]string{"messageId": "messageId is required"})
	}

	pref, err := s.repo.GetPreference(ctx, userRole, messageID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to get translation preference",
			zap.String("operation", "get_preference"),
			zap.String("message_id", messageID),
			zap.String("user_role", userRole),
			zap.Error(err),
		)
		return nil, newTranslationFailed(err)
	}
	if pref == nil {
		return &Preference{UserRole: userRole, MessageID: messageID, ShowOriginal: true}, nil
	}
	return pref, nil
}

// SetPreference upserts the display preference for (userRole, messageId)
func (s *Service) SetPreference(ctx context.Context, userRole string, req *PreferenceRequest) (*Preference, error) {
	req.MessageID = strings.TrimSpace(req.MessageID)
	if err := validation.ValidateStruct(req); err != nil {
		var valErr *validation.ValidationError
		if errors.As(err, &valErr) {
			return nil, newInvalidRequest("invalid preference request", valErr.Errors)
		}
		return nil, newInvalidRequest("invalid preference request", nil)
	}

	pref := &Preference{
		UserRole:     userRole,
		MessageID:    req.MessageID,
		ShowOriginal: *req.ShowOriginal,
	}
	if req.TargetLanguage != "" {
		l := LanguageCode(req.TargetLanguage)
		pref.TargetLanguage = &l
	}

	saved, err := s.repo.UpsertPreference(ctx, pref)
	if err != nil {
		logger.WithContext(ctx).Error("failed to save translation preference",
			zap.String("operation", "set_preference"),
			zap.String("message_id", req.MessageID),
			zap.String("user_role", userRole),
			zap.Error(err),
		)
		return nil, newTranslationFailed(err)
	}
	return saved, nil
}
