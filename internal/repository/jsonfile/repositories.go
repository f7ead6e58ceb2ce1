package jsonfile

import "github.com/noah-isme/trainee-tracker-api/internal/repository"

// NewRepositories wires every repository onto store.
func NewRepositories(store *Store) repository.Repositories {
	return repository.Repositories{
		Candidates: NewCandidateRepository(store),
		Courses:    NewCourseRepository(store),
		Mentors:    NewMentorRepository(store),
		Users:      NewUserRepository(store),
		Audit:      NewAuditRepository(store),
	}
}
