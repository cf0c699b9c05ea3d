package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableUsers        = "users"
	tableTopicScores  = "topic_scores"
	tableWrongAnswers = "wrong_answers"
	tableLLMEvents    = "llm_request_events"
	tableSequence     = "global_sequence"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "role", Type: field.TypeString, Default: RoleStudent},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       tableUsers,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// TopicScoresColumns holds the columns for the "topic_scores" table.
	TopicScoresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "topic", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt, Default: DefaultScore},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// TopicScoresTable holds the schema information for the "topic_scores" table.
	// The (user_id, topic) unique index is the conflict target of the
	// clamped increment.
	TopicScoresTable = &schema.Table{
		Name:       tableTopicScores,
		Columns:    TopicScoresColumns,
		PrimaryKey: []*schema.Column{TopicScoresColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "topicscore_user_id_topic",
				Unique:  true,
				Columns: []*schema.Column{TopicScoresColumns[1], TopicScoresColumns[2]},
			},
		},
	}

	// WrongAnswersColumns holds the columns for the "wrong_answers" table.
	WrongAnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "category", Type: field.TypeString},
		{Name: "question_content", Type: field.TypeString, Size: 2147483647},
		{Name: "student_answer", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString},
		{Name: "root_cause", Type: field.TypeString, Size: 2147483647},
		{Name: "improvement", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// WrongAnswersTable holds the schema information for the "wrong_answers" table.
	WrongAnswersTable = &schema.Table{
		Name:       tableWrongAnswers,
		Columns:    WrongAnswersColumns,
		PrimaryKey: []*schema.Column{WrongAnswersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "wronganswer_user_id",
				Columns: []*schema.Column{WrongAnswersColumns[1]},
			},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Columns: []*schema.Column{LLMRequestEventsColumns[2]},
			},
			{
				Name:    "llmrequestevent_purpose",
				Columns: []*schema.Column{LLMRequestEventsColumns[5]},
			},
		},
	}

	// SequenceColumns holds the columns for the single-row "global_sequence" table.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// SequenceTable holds the schema information for the "global_sequence" table.
	SequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		TopicScoresTable,
		WrongAnswersTable,
		LLMRequestEventsTable,
		SequenceTable,
	}
)

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("ent/migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
