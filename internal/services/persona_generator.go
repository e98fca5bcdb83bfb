package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"personas/internal/models"
)

// emailDomains is the fixed set synthetic emails are drawn from
var emailDomains = []string{"gmail.com", "outlook.com", "hotmail.com"}

// PersonaGenerator synthesizes plausible persona records. Each generator
// owns its own faker instance so tests can seed one deterministically.
type PersonaGenerator struct {
	faker *gofakeit.Faker
}

// NewPersonaGenerator creates a generator. Seed 0 picks a random seed.
func NewPersonaGenerator(seed uint64) *PersonaGenerator {
	return &PersonaGenerator{faker: gofakeit.New(seed)}
}

// Generate synthesizes count personas. Emails carry a random suffix and
// are deduplicated within the batch; collisions against already stored
// rows are left to the unique index.
func (g *PersonaGenerator) Generate(count int) []*models.Persona {
	personas := make([]*models.Persona, 0, count)
	seen := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		firstName := g.faker.FirstName()
		lastName := g.faker.LastName()

		var email string
		for {
			email = g.email(firstName, lastName)
			if !seen[email] {
				break
			}
		}
		seen[email] = true

		phone := g.faker.Phone()
		birthDate := g.birthDate()

		var notes *string
		if g.faker.Bool() {
			sentence := g.faker.Sentence(8)
			notes = &sentence
		}

		personas = append(personas, &models.Persona{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Phone:     &phone,
			BirthDate: &birthDate,
			IsActive:  g.faker.Bool(),
			Notes:     notes,
		})
	}

	return personas
}

// email builds a local part from the names plus a random suffix drawn
// from the generator's own faker, so a seeded instance is fully
// reproducible
func (g *PersonaGenerator) email(firstName, lastName string) string {
	suffix := g.faker.LetterN(4) + g.faker.DigitN(4)
	domain := emailDomains[g.faker.Number(0, len(emailDomains)-1)]
	return fmt.Sprintf("%s.%s.%s@%s", emailLocal(firstName), emailLocal(lastName), suffix, domain)
}

// birthDate returns a date giving an age between 18 and 90 inclusive
func (g *PersonaGenerator) birthDate() string {
	now := time.Now()
	age := g.faker.Number(18, 90)
	// shifting by under a year never completes another one
	days := g.faker.Number(0, 364)
	birth := now.AddDate(-age, 0, 0).AddDate(0, 0, -days)

	// AddDate normalization around month ends can land one year off
	if got := ageInYears(birth, now); got < 18 {
		birth = birth.AddDate(-1, 0, 0)
	} else if got > 90 {
		birth = birth.AddDate(1, 0, 0)
	}

	return birth.Format(models.DateLayout)
}

// emailLocal lowercases a name and strips anything not usable in the
// local part of an address
func emailLocal(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "persona"
	}
	return b.String()
}
