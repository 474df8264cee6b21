package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// InstructionService manages modification instructions attached to revisions.
// Instructions are resolved independently of the revision's own transitions.
type InstructionService struct {
	instructionRepo repository.InstructionRepository
	userRepo        repository.UserRepository
	log             *zerolog.Logger
}

// NewInstructionService creates a new InstructionService
func NewInstructionService(
	instructionRepo repository.InstructionRepository,
	userRepo repository.UserRepository,
) *InstructionService {
	return &InstructionService{
		instructionRepo: instructionRepo,
		userRepo:        userRepo,
		log:             logger.GetLogger(),
	}
}

// GetForRevision returns all instructions of a revision, newest first.
func (s *InstructionService) GetForRevision(revisionID uuid.UUID) ([]*domain.InstructionResponse, error) {
	instructions, err := s.instructionRepo.FindByRevision(revisionID)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(instructions), nil
}

// GetUnresolved returns instructions not yet marked resolved.
func (s *InstructionService) GetUnresolved(revisionID uuid.UUID) ([]*domain.InstructionResponse, error) {
	instructions, err := s.instructionRepo.FindUnresolved(revisionID)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(instructions), nil
}

// Resolve marks an instruction as handled.
func (s *InstructionService) Resolve(instructionID uuid.UUID, resolutionComment *string) (*domain.InstructionResponse, error) {
	instruction, err := s.instructionRepo.FindByID(instructionID)
	if err != nil {
		return nil, err
	}
	if instruction == nil {
		return nil, fmt.Errorf("%w: instruction %s", common.ErrInstructionNotFound, instructionID)
	}

	now := time.Now().UTC()
	instruction.ResolvedAt = &now
	instruction.ResolutionComment = resolutionComment
	if err := s.instructionRepo.Save(instruction); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("instruction_id", instructionID.String()).
		Msg("modification instruction resolved")

	return s.buildResponse(instruction), nil
}

func (s *InstructionService) buildResponses(instructions []*domain.RevisionInstruction) []*domain.InstructionResponse {
	responses := make([]*domain.InstructionResponse, 0, len(instructions))
	for _, in := range instructions {
		responses = append(responses, s.buildResponse(in))
	}
	return responses
}

func (s *InstructionService) buildResponse(in *domain.RevisionInstruction) *domain.InstructionResponse {
	var instructorName string
	if instructor, err := s.userRepo.FindByID(in.InstructorID); err == nil && instructor != nil {
		instructorName = instructor.FullName
	}
	return domain.NewInstructionResponse(in, instructorName)
}
