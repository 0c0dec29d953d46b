package repository

import (
	"github.com/studyhall/stream/internal/domain"
	"github.com/studyhall/stream/internal/infra/database/models"
)

func toActivity(row models.Activity) domain.Activity {
	return domain.Activity{
		ID:           row.ID,
		ActorID:      row.ActorID,
		Verb:         row.Verb,
		Target:       domain.Target{Kind: domain.ObjectKind(row.TargetKind), ID: row.TargetID},
		ScopeID:      row.ScopeID,
		ReplyToID:    row.ReplyToID,
		AbsReplyToID: row.AbsReplyToID,
		CreatedOn:    row.CreatedOn,
		Deleted:      row.Deleted,
	}
}

func toActivities(rows []models.Activity) []domain.Activity {
	out := make([]domain.Activity, len(rows))
	for i, row := range rows {
		out[i] = toActivity(row)
	}
	return out
}

func toRelationship(row models.Relationship) domain.Relationship {
	return domain.Relationship{
		ID:        row.ID,
		SourceID:  row.SourceID,
		Target:    domain.Target{Kind: domain.ObjectKind(row.TargetKind), ID: row.TargetID},
		CreatedOn: row.CreatedOn,
		Deleted:   row.Deleted,
	}
}

func toComment(row models.Comment) domain.Comment {
	return domain.Comment{
		ID:           row.ID,
		PageID:       row.PageID,
		AuthorID:     row.AuthorID,
		Content:      row.Content,
		ReplyToID:    row.ReplyToID,
		AbsReplyToID: row.AbsReplyToID,
		CreatedOn:    row.CreatedOn,
		Deleted:      row.Deleted,
	}
}

func toComments(rows []models.Comment) []domain.Comment {
	out := make([]domain.Comment, len(rows))
	for i, row := range rows {
		out[i] = toComment(row)
	}
	return out
}
