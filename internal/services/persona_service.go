package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"personas/internal/models"
	"personas/internal/repositories"
	"personas/pkg/logger"
)

const (
	maxListLimit     = 1000
	maxPopulateCount = 1000
)

type PersonaService struct {
	personaRepo *repositories.PersonaRepository
	generator   *PersonaGenerator
}

func NewPersonaService(personaRepo *repositories.PersonaRepository, generator *PersonaGenerator) *PersonaService {
	return &PersonaService{
		personaRepo: personaRepo,
		generator:   generator,
	}
}

// CreatePersona creates a new persona enforcing email uniqueness. The
// pre-check gives a fast failure; the unique index settles races.
func (s *PersonaService) CreatePersona(in *models.PersonaCreate) (*models.Persona, error) {
	exists, err := s.personaRepo.ExistsByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	persona := models.NewPersona(in)
	if err := s.personaRepo.Create(persona); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return persona, nil
}

// ListPersonas returns personas ordered by id, paginated by skip/limit
func (s *PersonaService) ListPersonas(skip, limit int) ([]*models.Persona, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0", ErrInvalidArgument)
	}
	if limit < 1 || limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, maxListLimit)
	}

	personas, err := s.personaRepo.List(skip, limit)
	if err != nil {
		return nil, err
	}
	if personas == nil {
		personas = []*models.Persona{}
	}

	return personas, nil
}

// GetPersona retrieves a persona by ID
func (s *PersonaService) GetPersona(id int64) (*models.Persona, error) {
	persona, err := s.personaRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonaNotFound
		}
		return nil, err
	}

	return persona, nil
}

// UpdatePersona applies the supplied fields of a sparse update. An email
// change re-runs the uniqueness protocol excluding the persona's own row.
func (s *PersonaService) UpdatePersona(id int64, in *models.PersonaUpdate) (*models.Persona, error) {
	persona, err := s.GetPersona(id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != persona.Email {
		taken, err := s.personaRepo.ExistsByEmailExcluding(*in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
	}

	if in.FirstName != nil {
		persona.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		persona.LastName = *in.LastName
	}
	if in.Email != nil {
		persona.Email = *in.Email
	}
	if in.Phone != nil {
		persona.Phone = in.Phone
	}
	if in.BirthDate != nil {
		persona.BirthDate = in.BirthDate
	}
	if in.IsActive != nil {
		persona.IsActive = *in.IsActive
	}
	if in.Notes != nil {
		persona.Notes = in.Notes
	}

	if err := s.personaRepo.Update(persona); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return persona, nil
}

// DeletePersona removes a persona by ID
func (s *PersonaService) DeletePersona(id int64) error {
	if _, err := s.GetPersona(id); err != nil {
		return err
	}

	return s.personaRepo.Delete(id)
}

// Reset purges every persona and returns the number of rows removed
func (s *PersonaService) Reset() (int64, error) {
	deleted, err := s.personaRepo.DeleteAll()
	if err != nil {
		return 0, err
	}

	logger.WithField("deleted", deleted).Info("personas table reset")
	return deleted, nil
}

// StatisticsByDomain counts personas per email domain, the domain being
// the substring after the final @, case-sensitive.
func (s *PersonaService) StatisticsByDomain() (map[string]int, error) {
	emails, err := s.personaRepo.GetEmails()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, email := range emails {
		domain := email[strings.LastIndex(email, "@")+1:]
		stats[domain]++
	}

	return stats, nil
}

// StatisticsByAge computes min/max/average age in whole completed years
// over personas with a birth date. Personas without one are excluded.
func (s *PersonaService) StatisticsByAge() (*models.AgeStatistics, error) {
	dates, err := s.personaRepo.GetBirthDates()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var ages []int
	for _, date := range dates {
		birth, err := time.Parse(models.DateLayout, date)
		if err != nil {
			logger.WithError(err).Warnf("skipping unparseable birth date %q", date)
			continue
		}
		ages = append(ages, ageInYears(birth, now))
	}

	stats := &models.AgeStatistics{}
	if len(ages) == 0 {
		return stats, nil
	}

	stats.Min = ages[0]
	stats.Max = ages[0]
	sum := 0
	for _, age := range ages {
		if age < stats.Min {
			stats.Min = age
		}
		if age > stats.Max {
			stats.Max = age
		}
		sum += age
	}
	stats.Avg = math.Round(float64(sum)/float64(len(ages))*10) / 10

	return stats, nil
}

// SearchPersonas finds personas whose first name, last name or email
// contains the term as a case-insensitive substring. An empty term
// matches every persona. Matching happens here rather than with SQL
// LIKE, so % and _ stay literal and case folding covers non-ASCII.
func (s *PersonaService) SearchPersonas(term string) ([]*models.Persona, error) {
	personas, err := s.personaRepo.GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	matches := make([]*models.Persona, 0, len(personas))
	for _, persona := range personas {
		if strings.Contains(strings.ToLower(persona.FirstName), needle) ||
			strings.Contains(strings.ToLower(persona.LastName), needle) ||
			strings.Contains(strings.ToLower(persona.Email), needle) {
			matches = append(matches, persona)
		}
	}

	return matches, nil
}

// ActiveReport returns the reduced projection of active personas
func (s *PersonaService) ActiveReport() ([]*models.ActivePersona, error) {
	personas, err := s.personaRepo.GetActive()
	if err != nil {
		return nil, err
	}
	if personas == nil {
		personas = []*models.ActivePersona{}
	}

	return personas, nil
}

// GetAllPersonas returns every persona, used by the export endpoint
func (s *PersonaService) GetAllPersonas() ([]*models.Persona, error) {
	personas, err := s.personaRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if personas == nil {
		personas = []*models.Persona{}
	}

	return personas, nil
}

// Populate inserts count synthetic personas as a single all-or-nothing
// batch. A generated email colliding with an existing row fails the
// whole batch.
func (s *PersonaService) Populate(count int) (int, error) {
	if count < 1 || count > maxPopulateCount {
		return 0, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidArgument, maxPopulateCount)
	}

	personas := s.generator.Generate(count)
	if err := s.personaRepo.CreateBatch(personas); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailAlreadyExists
		}
		return 0, err
	}

	logger.WithField("count", count).Info("personas populated")
	return count, nil
}

// ageInYears returns whole completed years between birth and now
func ageInYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
