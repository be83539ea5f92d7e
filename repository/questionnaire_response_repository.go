package repository

import (
	"context"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionnaireResponseRepositoryImpl implements QuestionnaireResponseRepository interface
type QuestionnaireResponseRepositoryImpl struct {
	*BaseRepository[models.QuestionnaireResponse, models.QuestionnaireResponseFilter]
}

// NewQuestionnaireResponseRepository creates a new questionnaire response repository
func NewQuestionnaireResponseRepository(db *gorm.DB) QuestionnaireResponseRepository {
	return &QuestionnaireResponseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QuestionnaireResponse, models.QuestionnaireResponseFilter](db),
	}
}

// ListByPersona retrieves all responses of a persona ordered by question key
func (r *QuestionnaireResponseRepositoryImpl) ListByPersona(ctx context.Context, personaID uint) ([]*models.QuestionnaireResponse, error) {
	db := r.getDB(ctx)
	var rows []*models.QuestionnaireResponse
	if err := db.Where("persona_id = ?", personaID).Order("question_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts a response or, when (persona_id, question_key) already
// exists, overwrites the prior answer instead of duplicating it.
func (r *QuestionnaireResponseRepositoryImpl) Upsert(ctx context.Context, response *models.QuestionnaireResponse) error {
	db := r.getDB(ctx)
	response.UpdatedAt = utils.UTCNow()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "persona_id"}, {Name: "question_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_text", "answer", "answer_type", "updated_at"}),
	}).Create(response).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *QuestionnaireResponseRepositoryImpl) applyFilter(query *gorm.DB, filter models.QuestionnaireResponseFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PersonaID != nil {
		query = query.Where("persona_id = ?", *filter.PersonaID)
	}
	if filter.QuestionKey != nil {
		query = query.Where("question_key = ?", *filter.QuestionKey)
	}
	if filter.AnswerType != nil {
		query = query.Where("answer_type = ?", *filter.AnswerType)
	}
	return query
}

// ByFilter retrieves responses based on filter criteria
func (r *QuestionnaireResponseRepositoryImpl) ByFilter(ctx context.Context, filter models.QuestionnaireResponseFilter, orderBy string, limit, offset int) ([]*models.QuestionnaireResponse, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.QuestionnaireResponse{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.QuestionnaireResponse
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of responses matching the filter
func (r *QuestionnaireResponseRepositoryImpl) Count(ctx context.Context, filter models.QuestionnaireResponseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.QuestionnaireResponse{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any response matching the filter exists
func (r *QuestionnaireResponseRepositoryImpl) Exists(ctx context.Context, filter models.QuestionnaireResponseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
