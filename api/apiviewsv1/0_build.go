package apiviewsv1

import (
	"github.com/fulldump/box"
)

func BuildV1Views(v1 *box.R) *box.R {

	views := v1.Resource("/views/{viewId}").
		WithActions(
			box.Get(getView),
			box.ActionPost(selectTab).WithName("selectTab"),
			box.ActionPost(clickPrimary).WithName("primary"),
			box.ActionPost(clickFeature).WithName("feature"),
			box.ActionPost(closeView).WithName("close"),
		)

	v1.Resource("/views/{viewId}/tabs/{tab}").
		WithActions(
			box.Get(getTab),
			box.ActionPost(search).WithName("search"),
			box.ActionPost(typeText).WithName("type"),
			box.ActionPost(page).WithName("page"),
			box.ActionPost(selectKeys).WithName("select"),
			box.ActionPost(deselectKeys).WithName("deselect"),
			box.ActionPost(selectAll).WithName("selectAll"),
			box.ActionPost(deselectAll).WithName("deselectAll"),
			box.ActionPost(setColumns).WithName("columns"),
			box.ActionPost(setSort).WithName("sort"),
			box.ActionPost(runAction).WithName("action"),
		)

	return views
}
