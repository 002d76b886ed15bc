package prstate

import (
	"context"

	"github.com/misty-step/cerberus/internal/aggregator"
	"github.com/misty-step/cerberus/internal/models"
)

// Fake is an in-memory PRState for tests.
type Fake struct {
	SHA          string
	Messages     map[string]string
	CommentList  []models.Comment
	Permissions  map[string]aggregator.ActorPermission
	ForkHeads    map[int]bool
}

func (f *Fake) HeadSHA(context.Context) (string, error) { return f.SHA, nil }

func (f *Fake) CommitMessage(_ context.Context, sha string) (string, error) {
	return f.Messages[sha], nil
}

func (f *Fake) Comments(context.Context, int) ([]models.Comment, error) {
	return f.CommentList, nil
}

func (f *Fake) ActorPermission(_ context.Context, actor string) (aggregator.ActorPermission, error) {
	if p, ok := f.Permissions[actor]; ok {
		return p, nil
	}
	return aggregator.PermissionNone, nil
}

func (f *Fake) IsForkHead(_ context.Context, prNumber int) (bool, error) {
	return f.ForkHeads[prNumber], nil
}
