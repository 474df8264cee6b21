package domain

import (
	"strings"
	"time"
)

// Target audience values for an article (kept verbatim from the portal UI)
const (
	TargetInternal      = "社内向け"
	TargetExternal      = "社外向け"
	TargetNotApplicable = "対象外"
)

// Article is the published knowledge-base entry revisions are proposed against.
// Read-only to the workflow core: only an approved revision changes it.
type Article struct {
	ID                uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArticleID         string     `gorm:"column:article_id;type:varchar(50);uniqueIndex" json:"article_id"`
	ArticleNumber     string     `gorm:"column:article_number;type:varchar(50)" json:"article_number"`
	Title             string     `gorm:"column:title;type:text" json:"title"`
	InfoCategoryCode  *string    `gorm:"column:info_category_code;type:varchar(2)" json:"info_category_code"`
	Keywords          *string    `gorm:"column:keywords;type:text" json:"keywords"`
	Importance        bool       `gorm:"column:importance" json:"importance"`
	Target            *string    `gorm:"column:target;type:varchar(20)" json:"target"`
	Question          *string    `gorm:"column:question;type:text" json:"question"`
	Answer            *string    `gorm:"column:answer;type:text" json:"answer"`
	AdditionalComment *string    `gorm:"column:additional_comment;type:text" json:"additional_comment"`
	PublishStart      *time.Time `gorm:"column:publish_start" json:"publish_start"`
	PublishEnd        *time.Time `gorm:"column:publish_end" json:"publish_end"`
	ApprovalGroup     *string    `gorm:"column:approval_group;type:varchar(100)" json:"approval_group"`
	IsActive          bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Article) TableName() string { return "articles" }

// IsPublished reports whether the article is inside its publish window.
func (a *Article) IsPublished(now time.Time) bool {
	if a.PublishStart != nil && now.Before(*a.PublishStart) {
		return false
	}
	if a.PublishEnd != nil && now.After(*a.PublishEnd) {
		return false
	}
	return a.IsActive
}

// KeywordsList splits the comma-separated keywords column.
func (a *Article) KeywordsList() []string {
	return SplitKeywords(a.Keywords)
}

// SplitKeywords turns a comma-separated keywords column into a trimmed list.
func SplitKeywords(keywords *string) []string {
	if keywords == nil || *keywords == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(*keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ArticleResponse is the explicit entity-to-response mapping for an article.
type ArticleResponse struct {
	ID                uint64     `json:"id"`
	ArticleID         string     `json:"article_id"`
	ArticleNumber     string     `json:"article_number"`
	Title             string     `json:"title"`
	InfoCategoryCode  *string    `json:"info_category_code"`
	Keywords          []string   `json:"keywords"`
	Importance        bool       `json:"importance"`
	Target            *string    `json:"target"`
	Question          *string    `json:"question"`
	Answer            *string    `json:"answer"`
	AdditionalComment *string    `json:"additional_comment"`
	PublishStart      *time.Time `json:"publish_start"`
	PublishEnd        *time.Time `json:"publish_end"`
	IsActive          bool       `json:"is_active"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewArticleResponse maps an article entity to its response shape.
func NewArticleResponse(a *Article) *ArticleResponse {
	return &ArticleResponse{
		ID:                a.ID,
		ArticleID:         a.ArticleID,
		ArticleNumber:     a.ArticleNumber,
		Title:             a.Title,
		InfoCategoryCode:  a.InfoCategoryCode,
		Keywords:          a.KeywordsList(),
		Importance:        a.Importance,
		Target:            a.Target,
		Question:          a.Question,
		Answer:            a.Answer,
		AdditionalComment: a.AdditionalComment,
		PublishStart:      a.PublishStart,
		PublishEnd:        a.PublishEnd,
		IsActive:          a.IsActive,
		UpdatedAt:         a.UpdatedAt,
	}
}

// JoinKeywords is the inverse of SplitKeywords. Empty list maps to nil.
func JoinKeywords(keywords []string) *string {
	if len(keywords) == 0 {
		return nil
	}
	joined := strings.Join(keywords, ",")
	return &joined
}
