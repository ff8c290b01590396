package availability

import (
	"context"
	"strconv"
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

const (
	BlockTypeVacation    = "vacation"
	BlockTypeMaintenance = "maintenance"
	BlockTypeMeeting     = "meeting"
	BlockTypeOther       = "other"
)

var blockTypes = map[string]bool{
	BlockTypeVacation:    true,
	BlockTypeMaintenance: true,
	BlockTypeMeeting:     true,
	BlockTypeOther:       true,
}

type CreateBlockInput struct {
	// vazio = vale para todos os terapeutas
	TherapistID string

	StartTime   time.Time
	EndTime     time.Time
	BlockType   string
	IsRecurring bool
	Reason      string

	ActorID string
}

type AdminBlocks struct {
	store domain.BlockStore
	audit *audit.Dispatcher
}

func NewAdminBlocks(
	store domain.BlockStore,
	audit *audit.Dispatcher,
) *AdminBlocks {
	return &AdminBlocks{
		store: store,
		audit: audit,
	}
}

func (uc *AdminBlocks) Create(
	ctx context.Context,
	in CreateBlockInput,
) (*models.AdminBlock, error) {

	if in.StartTime.IsZero() || !in.EndTime.After(in.StartTime) {
		return nil, httperr.ErrBusiness("invalid_block_period")
	}
	// recorrente repete toda semana: não pode durar mais que isso
	if in.IsRecurring && in.EndTime.Sub(in.StartTime) > 7*24*time.Hour {
		return nil, httperr.ErrBusiness("invalid_block_period")
	}

	blockType := in.BlockType
	if blockType == "" {
		blockType = BlockTypeOther
	}
	if !blockTypes[blockType] {
		return nil, httperr.ErrBusiness("invalid_block_type")
	}

	b := &models.AdminBlock{
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		BlockType:   blockType,
		IsRecurring: in.IsRecurring,
		Active:      true,
		Reason:      in.Reason,
		CreatedBy:   in.ActorID,
	}
	if in.TherapistID != "" {
		therapistID := in.TherapistID
		b.TherapistID = &therapistID
	}

	if err := uc.store.CreateBlock(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		TherapistID: in.TherapistID,
		ActorID:     in.ActorID,
		Action:      "admin_block_created",
		Entity:      "admin_block",
		EntityID:    strconv.FormatUint(uint64(b.ID), 10),
	})

	return b, nil
}

func (uc *AdminBlocks) List(
	ctx context.Context,
	filter domain.BlockFilter,
) ([]models.AdminBlock, error) {
	return uc.store.ListBlocks(ctx, filter)
}

func (uc *AdminBlocks) Deactivate(
	ctx context.Context,
	id uint,
	actorID string,
) error {
	if err := uc.store.DeactivateBlock(ctx, id); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "admin_block_deactivated",
		Entity:   "admin_block",
		EntityID: strconv.FormatUint(uint64(id), 10),
	})
	return nil
}
