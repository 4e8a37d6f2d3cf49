package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fulldump/labgrid/collection"
)

const randomCodeAttempts = 10

func (s *Service) RegisterProject(input *RegisterProject) (*Project, error) {

	v := &validator{}
	v.required("title", input.Title)
	v.required("objective", input.Objective)
	code := ""
	if input.Code != "" {
		parsed, err := ParseProjectCode(input.Code)
		if err != nil {
			v.addf("%s", err.Error())
		}
		code = parsed
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for attempt := 0; ; attempt++ {
		project := &Project{
			Code:      code,
			Title:     input.Title,
			Objective: input.Objective,
			CreatedAt: time.Now().UTC(),
		}
		if code == "" {
			project.Code = RandomProjectCode()
		}

		row, err := s.projects.Insert(project)
		if errors.Is(err, collection.ErrIndexConflict) {
			if code == "" && attempt < randomCodeAttempts {
				continue
			}
			return nil, fmt.Errorf("%w: project code '%s' already exists", ErrorConflict, project.Code)
		}
		if err != nil {
			return nil, err
		}
		return decodeRow[Project](row)
	}
}

func (s *Service) GetProject(id string) (*Project, error) {
	project, _, err := findById[Project](s.projects, id, ErrorProjectNotFound)
	return project, err
}

// ListProjects returns every project in registration order.
func (s *Service) ListProjects() ([]*Project, error) {
	return decodeRows[Project](s.projects.Rows())
}
