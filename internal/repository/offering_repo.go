package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travelbooking/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfferingRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// offeringModel keeps type-specific fields as a JSON document so every
// service type shares one table.
type offeringModel struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	Type       string    `gorm:"column:type;size:32;index:idx_offerings_type_provider"`
	ProviderID string    `gorm:"column:provider_id;size:36;index:idx_offerings_type_provider"`
	Name       string    `gorm:"column:name"`
	Attributes string    `gorm:"column:attributes;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (offeringModel) TableName() string { return "offerings" }

func toDomainOffering(m offeringModel) (*domain.Offering, error) {
	attrs := map[string]any{}
	if m.Attributes != "" {
		if err := json.Unmarshal([]byte(m.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("decode offering %s attributes: %w", m.ID, err)
		}
	}
	return &domain.Offering{
		ID:         m.ID,
		Type:       domain.ServiceType(m.Type),
		ProviderID: m.ProviderID,
		Name:       m.Name,
		Attributes: attrs,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (r *OfferingRepository) Create(ctx context.Context, o *domain.Offering) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	attrs, err := json.Marshal(o.Attributes)
	if err != nil {
		return fmt.Errorf("encode offering attributes: %w", err)
	}
	m := offeringModel{
		ID:         o.ID,
		Type:       string(o.Type),
		ProviderID: o.ProviderID,
		Name:       o.Name,
		Attributes: string(attrs),
		CreatedAt:  o.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	o.CreatedAt = m.CreatedAt
	return nil
}

func (r *OfferingRepository) Get(ctx context.Context, t domain.ServiceType, id string) (*domain.Offering, error) {
	var m offeringModel
	tx := r.db.WithContext(ctx).Where("id = ? AND type = ?", id, string(t)).First(&m)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	return toDomainOffering(m)
}

func (r *OfferingRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Offering, error) {
	var rows []offeringModel
	if err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Offering, 0, len(rows))
	for _, m := range rows {
		o, err := toDomainOffering(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}
