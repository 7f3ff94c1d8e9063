package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gym-admin/internal/client"
	"gym-admin/internal/domain"
	"gym-admin/internal/forms"
	"gym-admin/internal/wire"
)

// Mode задает режим формы брони.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Coordinator согласует состояние формы брони с тремя независимыми
// источниками: списком пользователей, списком ресурсов и доступными
// слотами для пары (ресурс, дата). В режиме редактирования добавляется
// четвертый источник, сама бронь.
//
// Счетчик загрузки ссылочный: каждая операция инкрементирует его на старте
// и декрементирует по завершении, форма считается занятой пока счетчик
// больше нуля. Ответы на запрос доступности помечаются монотонным номером,
// устаревшие ответы отбрасываются.
type Coordinator struct {
	mode          Mode
	reservationID string

	backend client.BackendClient
	logger  *zap.Logger

	loading  atomic.Int64
	availSeq atomic.Uint64

	mu        sync.Mutex
	users     []domain.User
	resources []domain.Resource
	timeSlots []string
	draft     forms.ReservationDraft
	lastErr   string
}

// State хранит снимок состояния формы для рендера.
type State struct {
	Mode          Mode
	ReservationID string
	Users         []domain.User
	Resources     []domain.Resource
	TimeSlots     []string
	Draft         forms.ReservationDraft
	Loading       bool
	Error         string
}

func NewCoordinator(backend client.BackendClient, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		mode:    ModeCreate,
		backend: backend,
		logger:  logger.Named("BookingCoordinator"),
	}
}

// NewEditCoordinator создает координатор в режиме редактирования брони.
func NewEditCoordinator(reservationID string, backend client.BackendClient, logger *zap.Logger) *Coordinator {
	c := NewCoordinator(backend, logger)
	c.mode = ModeEdit
	c.reservationID = reservationID
	return c
}

func (c *Coordinator) beginLoad() { c.loading.Add(1) }
func (c *Coordinator) endLoad()   { c.loading.Add(-1) }

// IsLoading сообщает, есть ли хотя бы один запрос в полете.
func (c *Coordinator) IsLoading() bool {
	return c.loading.Load() > 0
}

// Snapshot возвращает копию состояния формы.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Mode:          c.mode,
		ReservationID: c.reservationID,
		Users:         append([]domain.User(nil), c.users...),
		Resources:     append([]domain.Resource(nil), c.resources...),
		TimeSlots:     append([]string(nil), c.timeSlots...),
		Draft:         c.draft,
		Loading:       c.IsLoading(),
		Error:         c.lastErr,
	}
	state.Draft.Participants = append([]string(nil), c.draft.Participants...)
	return state
}

// LoadReferenceData параллельно загружает пользователей и ресурсы.
// 404 по пользователям означает пустой, но валидный список; любой другой
// провал фиксируется в состоянии и останавливает форму целиком.
func (c *Coordinator) LoadReferenceData(ctx context.Context, session *domain.Session) error {
	c.beginLoad()
	defer c.endLoad()

	var (
		wg       sync.WaitGroup
		users    []domain.User
		res      []domain.Resource
		usersErr error
		resErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		users, usersErr = c.backend.ListUsers(ctx, session)
	}()
	go func() {
		defer wg.Done()
		res, resErr = c.backend.ListResources(ctx, session)
	}()
	wg.Wait()

	if usersErr != nil {
		c.setError("No se pudieron cargar los usuarios")
		c.logger.Warn("Failed to load users for reservation form", zap.Error(usersErr))
		return usersErr
	}
	if resErr != nil {
		c.setError("No se pudieron cargar los recursos")
		c.logger.Warn("Failed to load resources for reservation form", zap.Error(resErr))
		return resErr
	}

	// В форме предлагаем только активные ресурсы.
	active := make([]domain.Resource, 0, len(res))
	for _, r := range res {
		if r.Active {
			active = append(active, r)
		}
	}

	c.mu.Lock()
	c.users = users
	c.resources = active
	c.lastErr = ""
	c.mu.Unlock()

	c.logger.Debug("Reference data loaded",
		zap.Int("users", len(users)),
		zap.Int("resources", len(active)))
	return nil
}

// LoadExistingReservation загружает редактируемую бронь и заполняет черновик.
// После загрузки сразу запрашивает доступность, чтобы слот самой брони
// был среди выбираемых, даже если бэкенд его уже не предлагает.
func (c *Coordinator) LoadExistingReservation(ctx context.Context, session *domain.Session) error {
	if c.mode != ModeEdit {
		return errors.New("reservation can only be loaded in edit mode")
	}

	c.beginLoad()
	reservation, err := c.backend.GetReservation(ctx, session, c.reservationID)
	c.endLoad()
	if err != nil {
		c.setError("No se pudo cargar la reserva")
		c.logger.Warn("Failed to load reservation for editing",
			zap.String("reservation_id", c.reservationID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.draft = forms.ReservationDraft{
		UserID:       reservation.ReservedBy,
		ResourceID:   reservation.ResourceID,
		Date:         reservation.Date.Format("2006-01-02"),
		TimeSlot:     reservation.TimeSlot,
		Participants: append([]string(nil), reservation.ParticipantIDs...),
	}
	c.lastErr = ""
	c.mu.Unlock()

	if err := c.LoadAvailability(ctx, session); err != nil {
		// Провал доступности не фатален, слот брони подставляем вручную.
		c.logger.Debug("Availability load after reservation fetch failed", zap.Error(err))
	}

	c.mu.Lock()
	if c.draft.TimeSlot != "" && !containsSlot(c.timeSlots, c.draft.TimeSlot) {
		c.timeSlots = append(c.timeSlots, c.draft.TimeSlot)
	}
	c.mu.Unlock()
	return nil
}

// SetResource меняет выбранный ресурс и перезагружает доступность,
// если дата уже выбрана.
func (c *Coordinator) SetResource(ctx context.Context, session *domain.Session, resourceID string) error {
	c.mu.Lock()
	c.draft.ResourceID = resourceID
	c.draft.TimeSlot = ""
	ready := resourceID != "" && c.draft.Date != ""
	c.mu.Unlock()

	if !ready {
		c.mu.Lock()
		c.timeSlots = nil
		c.mu.Unlock()
		return nil
	}
	return c.LoadAvailability(ctx, session)
}

// SetDate меняет дату и перезагружает доступность, если ресурс уже выбран.
func (c *Coordinator) SetDate(ctx context.Context, session *domain.Session, date string) error {
	c.mu.Lock()
	c.draft.Date = date
	c.draft.TimeSlot = ""
	ready := date != "" && c.draft.ResourceID != ""
	c.mu.Unlock()

	if !ready {
		c.mu.Lock()
		c.timeSlots = nil
		c.mu.Unlock()
		return nil
	}
	return c.LoadAvailability(ctx, session)
}

// SetUser меняет пользователя брони. Участник, совпавший с новым
// пользователем, из списка не удаляется: он просто исчезает из пула выбора.
func (c *Coordinator) SetUser(userID string) {
	c.mu.Lock()
	c.draft.UserID = userID
	c.mu.Unlock()
}

// SetTimeSlot фиксирует выбранный слот.
func (c *Coordinator) SetTimeSlot(slot string) {
	c.mu.Lock()
	c.draft.TimeSlot = slot
	c.mu.Unlock()
}

// LoadAvailability запрашивает слоты для текущей пары (ресурс, дата).
// Ответ всегда замещает список целиком; ответы, пришедшие после более
// нового запроса, отбрасываются. Сетевой провал вырождается в пустой
// список без глобальной ошибки формы.
func (c *Coordinator) LoadAvailability(ctx context.Context, session *domain.Session) error {
	c.mu.Lock()
	resourceID := c.draft.ResourceID
	rawDate := c.draft.Date
	c.mu.Unlock()
	if resourceID == "" || rawDate == "" {
		return nil
	}
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		c.logger.Debug("Skipping availability load, date not parseable yet", zap.String("date", rawDate))
		return nil
	}

	seq := c.availSeq.Add(1)

	c.beginLoad()
	slots, err := c.backend.Availability(ctx, session, resourceID, date)
	c.endLoad()

	if err != nil {
		c.logger.Warn("Availability request failed, degrading to empty slot list",
			zap.String("resource_id", resourceID), zap.String("date", rawDate), zap.Error(err))
		slots = nil
	}

	// Номер сверяется под тем же мьютексом, что и запись: проверка до
	// захвата оставляла бы окно, в котором свежий ответ успевает записаться
	// первым и затирается устаревшим.
	c.mu.Lock()
	stale := c.availSeq.Load() != seq
	if !stale {
		c.timeSlots = slots
	}
	c.mu.Unlock()
	if stale {
		c.logger.Debug("Discarding stale availability response",
			zap.Uint64("seq", seq), zap.String("resource_id", resourceID), zap.String("date", rawDate))
		return nil
	}
	return err
}

// ToggleParticipant симметрично добавляет или убирает участника.
func (c *Coordinator) ToggleParticipant(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, id := range c.draft.Participants {
		if id == userID {
			c.draft.Participants = append(c.draft.Participants[:i], c.draft.Participants[i+1:]...)
			return
		}
	}
	c.draft.Participants = append(c.draft.Participants, userID)
}

// ParticipantPool возвращает пул выбора участников: все пользователи,
// кроме того, на кого оформлена бронь.
func (c *Coordinator) ParticipantPool() []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	pool := make([]domain.User, 0, len(c.users))
	for _, u := range c.users {
		if u.ID != c.draft.UserID {
			pool = append(pool, u)
		}
	}
	return pool
}

// ApplyDraft замещает черновик целиком (значениями из POST формы).
func (c *Coordinator) ApplyDraft(draft forms.ReservationDraft) {
	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()
}

// Submit валидирует черновик и отправляет бронь на бэкенд. При ошибке
// валидации запрос не уходит вовсе; при провале отправки черновик
// сохраняется для повтора.
func (c *Coordinator) Submit(ctx context.Context, session *domain.Session) (map[string]string, error) {
	c.mu.Lock()
	draft := c.draft
	draft.Participants = append([]string(nil), c.draft.Participants...)
	c.mu.Unlock()

	if fieldErrors, err := forms.Validate(draft); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.logger.Debug("Reservation draft failed local validation",
				zap.Int("fields", len(fieldErrors)))
			return fieldErrors, err
		}
		return nil, err
	}

	// Дата прошла схему, формат гарантирован.
	date, err := time.Parse("2006-01-02", draft.Date)
	if err != nil {
		return map[string]string{"Date": "La fecha no es valida"}, domain.ErrValidation
	}
	payload := wire.NewReservationPayload(draft.UserID, draft.ResourceID, date, draft.TimeSlot, draft.Participants)

	c.beginLoad()
	if c.mode == ModeEdit {
		err = c.backend.UpdateReservation(ctx, session, c.reservationID, payload)
	} else {
		err = c.backend.CreateReservation(ctx, session, payload)
	}
	c.endLoad()

	if err != nil {
		c.setError("No se pudo guardar la reserva")
		c.logger.Warn("Reservation submit failed",
			zap.String("reservation_id", c.reservationID), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
	c.logger.Info("Reservation submitted",
		zap.String("resource_id", draft.ResourceID),
		zap.String("date", draft.Date),
		zap.String("time_slot", draft.TimeSlot))
	return nil, nil
}

func (c *Coordinator) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
