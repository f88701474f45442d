package service

import (
	"context"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/logger"
)

// хранилище журнала, реализуется repository.AuditRepository
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// обрабатывает журнал действий; без хранилища ничего не делает
type AuditService struct {
	repo AuditStore
}

// создает новый сервис журнала, repo может быть nil
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// создает новую запись в журнале, ошибки только логируются
func (s *AuditService) Log(ctx context.Context, chatID, userID int64, action, category string, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	log := &domain.AuditLog{
		ChatID:   chatID,
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "chat_id", chatID)
	}
}

// логирует переход сессии
func (s *AuditService) LogSession(ctx context.Context, chatID, userID int64, action, runID string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["run_id"] = runID

	s.Log(ctx, chatID, userID, action, domain.AuditCategorySession, details)
}

// логирует голос за MVP
func (s *AuditService) LogVote(ctx context.Context, chatID, voterID, candidateID int64, runID string) {
	details := map[string]interface{}{
		"run_id":       runID,
		"candidate_id": candidateID,
	}

	s.Log(ctx, chatID, voterID, domain.AuditActionVoteCast, domain.AuditCategoryVote, details)
}

// логирует действие администратора
func (s *AuditService) LogAdminAction(ctx context.Context, adminID int64, action string, chatID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID

	s.Log(ctx, chatID, adminID, action, domain.AuditCategoryAdmin, details)
}
