package apilabv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/labgrid/service"
)

func listProjects(ctx context.Context) ([]*service.Project, error) {
	return GetServicer(ctx).ListProjects()
}

func registerProject(ctx context.Context, w http.ResponseWriter, input *service.RegisterProject) (*service.Project, error) {

	project, err := GetServicer(ctx).RegisterProject(input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return project, nil
}

func getProject(ctx context.Context) (*service.Project, error) {
	projectId := box.GetUrlParameter(ctx, "projectId")
	return GetServicer(ctx).GetProject(projectId)
}
