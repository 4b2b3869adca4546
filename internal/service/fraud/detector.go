package fraud

import (
	"context"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// Signal имя фрод-сигнала
type Signal string

const (
	// SignalRapidStatusChanges последние N записей истории уложились в слишком короткое окно
	SignalRapidStatusChanges Signal = "rapid_status_changes"

	// SignalPostServiceCancellation исполнитель отменяет/заявляет неявку после даты услуги.
	// Единственный жёстко блокирующий сигнал.
	SignalPostServiceCancellation Signal = "post_service_provider_cancellation"

	// SignalPotentialReviewAvoidance клиент оспаривает завершённое бронирование без причины
	SignalPotentialReviewAvoidance Signal = "potential_review_avoidance"

	// SignalRepeatedNoShowClaims актор систематически заявляет о неявках противоположной стороны
	SignalRepeatedNoShowClaims Signal = "repeated_no_show_claims"

	// SignalFrequentProviderCancellations исполнитель часто отменяет бронирования (advisory)
	SignalFrequentProviderCancellations Signal = "frequent_provider_cancellations"
)

// Config пороговые значения детектора (тюнинг, не жёсткий контракт)
type Config struct {
	RapidChangeWindow time.Duration
	RapidChangeCount  int
	NoShowThreshold   int
	NoShowWindow      time.Duration
}

// CheckInput один проверяемый запрос на изменение состояния бронирования
type CheckInput struct {
	Booking       *domain.Booking
	ActorUserID   int64
	Role          domain.ActorRole
	TargetStatus  domain.BookingStatus // пустой для completion-marking запросов
	DisputeReason *string
	Now           time.Time
}

// Result типизированный результат проверки, передаётся по пайплайну явно
// (не через разделяемый контекст запроса)
type Result struct {
	Signals []Signal
	Blocked bool
}

// Flags возвращает имена сигналов для security-события
func (r Result) Flags() []string {
	flags := make([]string, len(r.Signals))
	for i, s := range r.Signals {
		flags[i] = string(s)
	}
	return flags
}

func (r *Result) add(s Signal) {
	r.Signals = append(r.Signals, s)
}

// Detector advisory-анализатор подозрительных паттернов.
// Никогда не блокирует запрос, кроме одного правила:
// отмена исполнителем после даты услуги.
type Detector struct {
	historyRepo HistoryRepository
	cfg         Config
	logger      Logger
}

// NewDetector создает новый детектор фрод-сигналов
func NewDetector(historyRepo HistoryRepository, cfg Config, logger Logger) *Detector {
	return &Detector{
		historyRepo: historyRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Check прогоняет все сигналы для запроса. Сигналы независимы,
// одновременно может сработать несколько. Ошибки чтения истории не
// валят запрос: детектор advisory, сигнал просто не вычисляется.
func (d *Detector) Check(ctx context.Context, in CheckInput) (Result, error) {
	var result Result

	d.checkRapidStatusChanges(ctx, in, &result)
	d.checkPostServiceCancellation(in, &result)
	d.checkReviewAvoidance(in, &result)
	d.checkRepeatedNoShowClaims(ctx, in, &result)

	if len(result.Signals) > 0 {
		d.logger.Warn("fraud: booking=%d actor=%d role=%s signals=%v blocked=%v",
			in.Booking.ID, in.ActorUserID, in.Role, result.Signals, result.Blocked)
	}

	return result, nil
}

// checkRapidStatusChanges сигнал 1: N последних смен статуса за слишком короткое окно
func (d *Detector) checkRapidStatusChanges(ctx context.Context, in CheckInput, result *Result) {
	entries, err := d.historyRepo.RecentHistory(ctx, in.Booking.ID, uint64(d.cfg.RapidChangeCount))
	if err != nil {
		d.logger.Error("fraud: failed to load recent history for booking=%d: %v", in.Booking.ID, err)
		return
	}

	if len(entries) < d.cfg.RapidChangeCount {
		return
	}

	// entries отсортированы от новых к старым
	newest := entries[0].CreatedAt
	oldest := entries[len(entries)-1].CreatedAt
	if newest.Sub(oldest) < d.cfg.RapidChangeWindow {
		result.add(SignalRapidStatusChanges)
	}
}

// checkPostServiceCancellation сигнал 2: единственный hard block.
// Исполнитель не может отменить или заявить неявку клиента, когда дата
// услуги уже прошла - услуга либо состоялась, либо должна идти через спор.
func (d *Detector) checkPostServiceCancellation(in CheckInput, result *Result) {
	if in.Role != domain.RoleProvider {
		return
	}
	if in.TargetStatus != domain.StatusCancelled && in.TargetStatus != domain.StatusNoShowCustomer {
		return
	}
	if !in.Booking.IsPastServiceDate(in.Now) {
		return
	}

	result.add(SignalPostServiceCancellation)
	result.Blocked = true
}

// checkReviewAvoidance сигнал 3: completed → disputed без причины.
// Только лог: отсутствие причины жёстко отклоняет валидация создания спора.
func (d *Detector) checkReviewAvoidance(in CheckInput, result *Result) {
	if in.Role != domain.RoleCustomer {
		return
	}
	if in.Booking.Status != domain.StatusCompleted || in.TargetStatus != domain.StatusDisputed {
		return
	}
	if in.DisputeReason != nil && *in.DisputeReason != "" {
		return
	}

	result.add(SignalPotentialReviewAvoidance)
}

// checkRepeatedNoShowClaims сигнал 4: систематические заявления о неявке.
// Считаем заявления актора о неявке противоположной стороны за окно,
// включая текущий запрос.
func (d *Detector) checkRepeatedNoShowClaims(ctx context.Context, in CheckInput, result *Result) {
	var claimed domain.BookingStatus
	switch {
	case in.Role == domain.RoleCustomer && in.TargetStatus == domain.StatusNoShowProvider:
		claimed = domain.StatusNoShowProvider
	case in.Role == domain.RoleProvider && in.TargetStatus == domain.StatusNoShowCustomer:
		claimed = domain.StatusNoShowCustomer
	default:
		return
	}

	since := in.Now.Add(-d.cfg.NoShowWindow)
	count, err := d.historyRepo.CountNoShowClaims(ctx, in.ActorUserID, claimed, since)
	if err != nil {
		d.logger.Error("fraud: failed to count no-show claims for actor=%d: %v", in.ActorUserID, err)
		return
	}

	if count+1 >= d.cfg.NoShowThreshold {
		result.add(SignalRepeatedNoShowClaims)
	}
}
