package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/internal/bom"
	"github.com/YouHyuksoo/HANES-sub001/internal/items"
	dbpkg "github.com/YouHyuksoo/HANES-sub001/pkg/db"
	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	pkgerrors "github.com/YouHyuksoo/HANES-sub001/pkg/errors"
	"github.com/YouHyuksoo/HANES-sub001/pkg/events"
	"github.com/YouHyuksoo/HANES-sub001/pkg/metrics"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

// mutableStatuses are the states in which plan fields may still change.
var mutableStatuses = []enums.OrderStatus{
	enums.OrderStatusWaiting,
	enums.OrderStatusRunning,
	enums.OrderStatusPaused,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event events.DomainEvent) error
}

// Service drives the work order lifecycle: registration, BOM expansion,
// guarded status transitions and atomic completion aggregation.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Start(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Pause(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (*models.Order, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error)
}

type service struct {
	repo       Repository
	items      items.Repository
	bom        bom.Resolver
	aggregator *Aggregator
	tx         txRunner
	events     eventEmitter
	metrics    *metrics.OrderMetrics
}

// NewService builds the order lifecycle service with the required dependencies.
func NewService(
	repo Repository,
	itemRepo items.Repository,
	resolver bom.Resolver,
	aggregator *Aggregator,
	tx txRunner,
	emitter eventEmitter,
	orderMetrics *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("bom resolver required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("completion aggregator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:       repo,
		items:      itemRepo,
		bom:        resolver,
		aggregator: aggregator,
		tx:         tx,
		events:     emitter,
		metrics:    orderMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.OrderNo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order no required")
	}
	if input.ItemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}
	if input.PlanQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan qty must be positive")
	}
	if input.PlanDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan date required")
	}

	var created *models.Order
	var expanded bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.ExistsOrderNo(ctx, input.OrderNo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order no")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "order no already exists").
				WithDetails(map[string]any{"order_no": input.OrderNo})
		}

		item, err := s.items.WithTx(tx).FindByCode(ctx, input.ItemCode)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target item not found").
					WithDetails(map[string]any{"item_code": input.ItemCode})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target item")
		}

		parent := &models.Order{
			OrderNo:  input.OrderNo,
			ItemID:   item.ID,
			PlanQty:  input.PlanQty,
			Status:   enums.OrderStatusWaiting,
			PlanDate: input.PlanDate,
			Priority: input.Priority,
			Remark:   input.Remark,
		}
		if _, err := repo.Create(ctx, parent); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order no already exists").
					WithDetails(map[string]any{"order_no": input.OrderNo})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.emitCreated(ctx, tx, parent); err != nil {
			return err
		}

		if input.AutoExpand {
			children, err := s.expand(ctx, tx, parent)
			if err != nil {
				return err
			}
			for i := range children {
				if err := s.emitCreated(ctx, tx, &children[i]); err != nil {
					return err
				}
			}
			expanded = len(children) > 0
		}

		created = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(enums.OrderStatusWaiting.String())
	if expanded {
		s.metrics.IncExpansion()
	}
	return created, nil
}

// expand creates one child order per active work-in-process BOM line.
// A failure on any child aborts the whole creation.
func (s *service) expand(ctx context.Context, tx *gorm.DB, parent *models.Order) ([]models.Order, error) {
	lines, err := s.bom.WithTx(tx).ActiveWIPComponents(ctx, parent.ItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve bom")
	}
	if len(lines) == 0 {
		return nil, nil
	}

	children := make([]models.Order, 0, len(lines))
	for i, line := range lines {
		remark := fmt.Sprintf("auto-generated from %s", parent.OrderNo)
		children = append(children, models.Order{
			OrderNo:       fmt.Sprintf("%s-%02d", parent.OrderNo, i+1),
			ItemID:        line.ChildItemID,
			ParentOrderID: &parent.ID,
			PlanQty:       childPlanQty(parent.PlanQty, line.QuantityPer),
			Status:        enums.OrderStatusWaiting,
			PlanDate:      parent.PlanDate,
			Priority:      parent.Priority,
			Remark:        &remark,
		})
	}

	if err := s.repo.WithTx(tx).CreateBatch(ctx, children); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create child orders")
	}
	return children, nil
}

// childPlanQty computes ceil(parentPlanQty × qtyPer).
func childPlanQty(parentPlanQty int, qtyPer decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(parentPlanQty)).Mul(qtyPer).Ceil().IntPart())
}

func (s *service) Start(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusRunning,
		[]enums.OrderStatus{enums.OrderStatusWaiting, enums.OrderStatusPaused},
		enums.DomainEventOrderStarted,
		func(order *models.Order, updates map[string]any) {
			// only the first start records the true start time
			now := time.Now()
			updates["started_at"] = gorm.Expr("COALESCE(started_at, ?)", now)
			if order.StartedAt == nil {
				order.StartedAt = &now
			}
		})
}

func (s *service) Pause(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusPaused,
		[]enums.OrderStatus{enums.OrderStatusRunning},
		enums.DomainEventOrderPaused, nil)
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}

		totals, err := s.aggregator.Totals(ctx, tx, order.ID)
		if err != nil {
			return err
		}

		allowed := []enums.OrderStatus{enums.OrderStatusRunning, enums.OrderStatusPaused}
		now := time.Now()
		updates := map[string]any{
			"status":     enums.OrderStatusDone,
			"good_qty":   totals.GoodQty,
			"defect_qty": totals.DefectQty,
			"ended_at":   now,
		}
		matched, err := repo.UpdateFieldsWhereStatus(ctx, order.ID, allowed, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
		}
		if !matched {
			return guardFailure(ctx, repo, id, allowed)
		}

		from := order.Status
		order.Status = enums.OrderStatusDone
		order.GoodQty = &totals.GoodQty
		order.DefectQty = &totals.DefectQty
		order.EndedAt = &now

		event := events.DomainEvent{
			EventType:     enums.DomainEventOrderCompleted,
			AggregateType: enums.DomainAggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: TransitionEvent{
				OrderID:   order.ID,
				OrderNo:   order.OrderNo,
				From:      from,
				To:        enums.OrderStatusDone,
				GoodQty:   order.GoodQty,
				DefectQty: order.DefectQty,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(enums.OrderStatusDone.String())
	return result, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusCanceled,
		[]enums.OrderStatus{enums.OrderStatusWaiting, enums.OrderStatusPaused},
		enums.DomainEventOrderCanceled,
		func(order *models.Order, updates map[string]any) {
			now := time.Now()
			updates["ended_at"] = now
			order.EndedAt = &now
			if reason != nil {
				updates["remark"] = *reason
				order.Remark = reason
			}
		})
}

// ChangeStatus writes the requested status unconditionally. It bypasses the
// transition guard on purpose; it is an administrative override, not a
// normal-path operation.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status})
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}

		if err := repo.UpdateFields(ctx, order.ID, map[string]any{"status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override order status")
		}

		from := order.Status
		order.Status = status

		event := events.DomainEvent{
			EventType:     enums.DomainEventOrderOverridden,
			AggregateType: enums.DomainAggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: TransitionEvent{
				OrderID: order.ID,
				OrderNo: order.OrderNo,
				From:    from,
				To:      status,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(status.String())
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	if input.PlanQty != nil && *input.PlanQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan qty must be positive")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.PlanQty != nil {
			updates["plan_qty"] = *input.PlanQty
			order.PlanQty = *input.PlanQty
		}
		if input.PlanDate != nil {
			updates["plan_date"] = *input.PlanDate
			order.PlanDate = *input.PlanDate
		}
		if input.Priority != nil {
			updates["priority"] = *input.Priority
			order.Priority = *input.Priority
		}
		if input.Remark != nil {
			updates["remark"] = *input.Remark
			order.Remark = input.Remark
		}
		if len(updates) == 0 {
			result = order
			return nil
		}

		matched, err := repo.UpdateFieldsWhereStatus(ctx, order.ID, mutableStatuses, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if !matched {
			current, err := loadOrder(ctx, repo, id)
			if err != nil {
				return err
			}
			if current.Status.IsTerminal() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "finalized order cannot be updated").
					WithDetails(map[string]any{"current": current.Status})
			}
			return statusConflict(current, mutableStatuses...)
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		matched, err := repo.DeleteWhereStatusNot(ctx, id, enums.OrderStatusRunning)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		if matched {
			return nil
		}

		order, err := loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "running order cannot be deleted").
			WithDetails(map[string]any{"current": order.Status})
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := loadOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error) {
	page, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// transition runs one guarded status write plus its event inside a single
// transaction. mutate may stage extra column updates.
func (s *service) transition(
	ctx context.Context,
	id uuid.UUID,
	target enums.OrderStatus,
	allowed []enums.OrderStatus,
	eventType enums.DomainEventType,
	mutate func(order *models.Order, updates map[string]any),
) (*models.Order, error) {
	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}

		updates := map[string]any{"status": target}
		if mutate != nil {
			mutate(order, updates)
		}

		// the guard rides in the WHERE clause of the write, so a lost
		// status race matches zero rows
		matched, err := repo.UpdateFieldsWhereStatus(ctx, order.ID, allowed, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !matched {
			return guardFailure(ctx, repo, id, allowed)
		}

		from := order.Status
		order.Status = target

		event := events.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.DomainAggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: TransitionEvent{
				OrderID: order.ID,
				OrderNo: order.OrderNo,
				From:    from,
				To:      target,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(target.String())
	return result, nil
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	event := events.DomainEvent{
		EventType:     enums.DomainEventOrderCreated,
		AggregateType: enums.DomainAggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: CreatedEvent{
			OrderID:       order.ID,
			OrderNo:       order.OrderNo,
			ItemID:        order.ItemID,
			ParentOrderID: order.ParentOrderID,
			PlanQty:       order.PlanQty,
		},
	}
	return s.events.Emit(ctx, tx, event)
}

func loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// guardFailure reloads the row after a zero-row conditional write and maps
// what it finds to the client error.
func guardFailure(ctx context.Context, repo Repository, id uuid.UUID, allowed []enums.OrderStatus) error {
	order, err := loadOrder(ctx, repo, id)
	if err != nil {
		return err
	}
	return statusConflict(order, allowed...)
}

func statusConflict(order *models.Order, allowed ...enums.OrderStatus) error {
	required := make([]string, 0, len(allowed))
	for _, status := range allowed {
		required = append(required, status.String())
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed in current state").
		WithDetails(map[string]any{
			"order_no": order.OrderNo,
			"current":  order.Status,
			"required": required,
		})
}
