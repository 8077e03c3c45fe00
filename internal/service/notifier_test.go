package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/service"
	mock_service "rescueDispatch/internal/service/mocks"
	"rescueDispatch/internal/storage/memory"
	"rescueDispatch/internal/triage"
	"rescueDispatch/pkg/e"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
)

func TestNotifier_Emit_StampsAndEnqueues(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := mock_service.NewMockNotificationQueue(ctrl)
	var got domain.Notification
	q.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, n domain.Notification) error {
			if ctx.Err() != nil {
				t.Fatalf("enqueue context already done: %v", ctx.Err())
			}
			got = n
			return nil
		}).
		Times(1)

	n := service.NewNotifier(q, nil, newTestLogger(), time.Second)

	// a canceled request context must not drop the event
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Emit(ctx, domain.Notification{Type: domain.NotificationIncidentCreated, Message: "hello"})

	if got.ID == uuid.Nil || got.CreatedAt.IsZero() {
		t.Fatalf("notification not stamped: %+v", got)
	}
	if got.Message != "hello" {
		t.Fatalf("message = %q", got.Message)
	}
}

func TestLifecycle_NotificationFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := mock_service.NewMockNotificationQueue(ctrl)
	q.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		Return(errors.New("redis down")).
		Times(2)

	store := memory.NewIncidentStore()
	logger := newTestLogger()
	notifier := service.NewNotifier(q, nil, logger, time.Second)
	lifecycle := service.NewLifecycle(store, triage.New(), notifier, nil, logger, fallbackCenter)

	inc, err := lifecycle.Create(context.Background(), reporter, galleRoadReport())
	if err != nil {
		t.Fatalf("Create must not surface emitter failure: %v", err)
	}
	got, err := lifecycle.Transition(context.Background(), operator, inc.ID, domain.TransitionRequest{Status: domain.StatusCancelled})
	if err != nil {
		t.Fatalf("Transition must not surface emitter failure: %v", err)
	}
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status = %s", got.Status)
	}
	stored, _ := store.Get(context.Background(), inc.ID)
	if stored.Status != domain.StatusCancelled {
		t.Fatalf("stored status = %s", stored.Status)
	}
}

func TestLifecycle_Create_RetriesRequestIDCollision(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)
	emitter := mock_service.NewMockEmitter(ctrl)

	var ids []string
	gomock.InOrder(
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inc *domain.Incident) error {
				ids = append(ids, inc.RequestID)
				return e.ErrUniqueViolation
			}),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inc *domain.Incident) error {
				ids = append(ids, inc.RequestID)
				return nil
			}),
	)
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(1)

	lifecycle := service.NewLifecycle(repo, triage.New(), emitter, nil, newTestLogger(), fallbackCenter)
	inc, err := lifecycle.Create(context.Background(), reporter, galleRoadReport())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(ids) != 2 || inc.RequestID != ids[1] {
		t.Fatalf("request ids = %v, incident has %q", ids, inc.RequestID)
	}
}

func TestLifecycle_Transition_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)
	emitter := mock_service.NewMockEmitter(ctrl)
	id := uuid.New()

	repo.EXPECT().
		Update(gomock.Any(), id, gomock.Any()).
		Return(nil, e.ErrDeadline).
		Times(1)
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(0)

	lifecycle := service.NewLifecycle(repo, triage.New(), emitter, nil, newTestLogger(), fallbackCenter)
	_, err := lifecycle.Transition(context.Background(), operator, id, domain.TransitionRequest{Status: domain.StatusCancelled})
	if !errors.Is(err, e.ErrDeadline) {
		t.Fatalf("err = %v, want ErrDeadline", err)
	}
}
