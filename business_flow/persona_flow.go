package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonaFlow derives and reads the artist's active persona.
// Questionnaire resubmission mutates the active persona in place;
// there is never more than one active persona per artist.
type PersonaFlow interface {
	SubmitQuestionnaire(ctx context.Context, artistID uint, req *dto.SubmitQuestionnaireRequest, metadata *ClientMetadata) (*dto.PersonaResponse, error)
	GetActivePersona(ctx context.Context, artistID uint) (*dto.PersonaResponse, error)
}

type PersonaFlowImpl struct {
	personaRepo  repository.PersonaRepository
	responseRepo repository.QuestionnaireResponseRepository
	artistRepo   repository.ArtistRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

func NewPersonaFlow(
	personaRepo repository.PersonaRepository,
	responseRepo repository.QuestionnaireResponseRepository,
	artistRepo repository.ArtistRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) PersonaFlow {
	return &PersonaFlowImpl{
		personaRepo:  personaRepo,
		responseRepo: responseRepo,
		artistRepo:   artistRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// SubmitQuestionnaire upserts the answers into the artist's active
// persona, creating it on first submission, and rederives the persona
// fields from the full answer set.
func (f *PersonaFlowImpl) SubmitQuestionnaire(ctx context.Context, artistID uint, req *dto.SubmitQuestionnaireRequest, metadata *ClientMetadata) (*dto.PersonaResponse, error) {
	if len(req.Answers) == 0 {
		return nil, NewBusinessError("QUESTIONNAIRE_EMPTY", "At least one answer is required", ErrQuestionnaireEmpty)
	}

	answers := make([]models.QuestionnaireResponse, 0, len(req.Answers))
	for _, a := range req.Answers {
		key := strings.ToLower(strings.TrimSpace(a.QuestionKey))
		if key == "" {
			return nil, NewBusinessError("QUESTION_KEY_REQUIRED", "Every answer needs a question key", ErrQuestionKeyRequired)
		}
		if strings.TrimSpace(a.Answer) == "" {
			return nil, NewBusinessError("ANSWER_REQUIRED", "Every answer needs a value", ErrAnswerRequired)
		}
		answerType := a.AnswerType
		if answerType == "" {
			answerType = models.AnswerTypeText
		}
		if !models.IsValidAnswerType(answerType) {
			return nil, NewBusinessError("INVALID_ANSWER_TYPE", "Unknown answer type "+answerType, ErrInvalidAnswerType)
		}
		questionText := strings.TrimSpace(a.QuestionText)
		if questionText == "" {
			questionText = key
		}
		answers = append(answers, models.QuestionnaireResponse{
			QuestionKey:  key,
			QuestionText: questionText,
			Answer:       strings.TrimSpace(a.Answer),
			AnswerType:   answerType,
		})
	}

	artist, err := f.artistRepo.ByID(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("ARTIST_FETCH_FAILED", "Failed to fetch artist", err)
	}
	if artist == nil {
		return nil, NewBusinessError("ARTIST_NOT_FOUND", "Artist not found", ErrArtistNotFound)
	}

	var personaID uint
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		persona, err := f.personaRepo.ActiveByArtist(txCtx, artistID)
		if err != nil {
			return err
		}
		if persona == nil {
			persona = &models.Persona{
				UUID:     uuid.New(),
				ArtistID: artistID,
				Name:     artist.ArtistName,
				Tone:     models.ToneCasual,
				IsActive: utils.ToPtr(true),
			}
			// Guards against a stale active row left by a failed derivation
			if err := f.personaRepo.DeactivateAllForArtist(txCtx, artistID); err != nil {
				return err
			}
			if err := f.personaRepo.Save(txCtx, persona); err != nil {
				return err
			}
		}

		for i := range answers {
			answers[i].PersonaID = persona.ID
			if err := f.responseRepo.Upsert(txCtx, &answers[i]); err != nil {
				return err
			}
		}

		all, err := f.responseRepo.ListByPersona(txCtx, persona.ID)
		if err != nil {
			return err
		}
		derivePersona(persona, all)
		if err := f.personaRepo.Update(txCtx, persona); err != nil {
			return err
		}
		personaID = persona.ID
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("QUESTIONNAIRE_SUBMIT_FAILED", "Failed to submit questionnaire", err)
	}

	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionPersonaUpdated, "questionnaire submitted", true, metadata)

	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil || persona == nil || persona.ID != personaID {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch derived persona", err)
	}
	return &dto.PersonaResponse{
		Message: "Persona updated from questionnaire",
		Persona: ToPersonaDTO(persona),
	}, nil
}

// GetActivePersona returns the active persona with responses
func (f *PersonaFlowImpl) GetActivePersona(ctx context.Context, artistID uint) (*dto.PersonaResponse, error) {
	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch persona", err)
	}
	if persona == nil {
		return nil, NewBusinessError("PERSONA_NOT_FOUND", "No active persona. Submit the questionnaire first", ErrPersonaNotFound)
	}
	return &dto.PersonaResponse{
		Message: "Active persona retrieved",
		Persona: ToPersonaDTO(persona),
	}, nil
}

// derivePersona maps well-known question keys onto persona fields and
// folds the remaining free-text answers into the voice traits map.
func derivePersona(persona *models.Persona, responses []*models.QuestionnaireResponse) {
	traits := map[string]string{}
	for _, r := range responses {
		answer := strings.TrimSpace(r.Answer)
		switch r.QuestionKey {
		case models.QuestionKeyTone:
			persona.Tone = strings.ToLower(answer)
		case models.QuestionKeyTargetAudience:
			persona.TargetAudience = answer
		case models.QuestionKeyThemes:
			persona.ThemeKeywords = splitThemes(answer)
		case models.QuestionKeyPersonaName:
			persona.Name = answer
		default:
			traits[r.QuestionKey] = answer
		}
	}
	if raw, err := json.Marshal(traits); err == nil {
		persona.VoiceTraits = raw
	}
	persona.UpdatedAt = utils.UTCNow()
}

func splitThemes(answer string) []string {
	parts := strings.Split(answer, ",")
	themes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			themes = append(themes, strings.ToLower(p))
		}
	}
	return themes
}

// recordAudit writes an audit row. Audit failures are swallowed so they
// never fail the flow that triggered them.
func recordAudit(ctx context.Context, repo repository.AuditLogRepository, artistID uint, action, description string, success bool, metadata *ClientMetadata) {
	entry := &models.AuditLog{
		ArtistID:    &artistID,
		Action:      action,
		Description: &description,
		Success:     &success,
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			entry.RequestID = &metadata.RequestID
		}
	}
	_ = repo.Save(ctx, entry)
}
