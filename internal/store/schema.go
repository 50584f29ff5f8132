package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the layout ent's migrate package expects. The store
// builds queries with ent's SQL builder, so there is no generated client.
var (
	// RequestEventsColumns holds the columns for the "request_events" table.
	RequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "target", Type: field.TypeString},
		{Name: "operation", Type: field.TypeString},
		{Name: "method", Type: field.TypeString, Default: ""},
		{Name: "url", Type: field.TypeString, Default: ""},
		{Name: "purpose", Type: field.TypeString, Default: ""},
		{Name: "status_code", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "attempts", Type: field.TypeInt, Default: 1},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_kind", Type: field.TypeString, Default: ""},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// RequestEventsTable holds the schema information for the "request_events" table.
	RequestEventsTable = &schema.Table{
		Name:       "request_events",
		Columns:    RequestEventsColumns,
		PrimaryKey: []*schema.Column{RequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "requestevent_timestamp", Columns: []*schema.Column{RequestEventsColumns[2]}},
			{Name: "requestevent_target_operation", Columns: []*schema.Column{RequestEventsColumns[3], RequestEventsColumns[4]}},
		},
	}

	// QuizReportsColumns holds the columns for the "quiz_reports" table.
	QuizReportsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString, Unique: true},
		{Name: "learning_block", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "question_ids", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "score", Type: field.TypeInt},
		{Name: "num_questions", Type: field.TypeInt},
		{Name: "delivered", Type: field.TypeBool, Default: false},
		{Name: "finished_at", Type: field.TypeTime},
	}
	// QuizReportsTable holds the schema information for the "quiz_reports" table.
	QuizReportsTable = &schema.Table{
		Name:       "quiz_reports",
		Columns:    QuizReportsColumns,
		PrimaryKey: []*schema.Column{QuizReportsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizreport_learning_block", Columns: []*schema.Column{QuizReportsColumns[3]}},
		},
	}

	// BlocksColumns holds the columns for the "blocks" table.
	BlocksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "slug", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "added_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// BlocksTable holds the schema information for the "blocks" table.
	BlocksTable = &schema.Table{
		Name:       "blocks",
		Columns:    BlocksColumns,
		PrimaryKey: []*schema.Column{BlocksColumns[0]},
	}

	// WordsColumns holds the columns for the "words" table.
	WordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "transliteration", Type: field.TypeString, Default: ""},
		{Name: "translation", Type: field.TypeString, Default: ""},
		{Name: "example", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "added_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// WordsTable holds the schema information for the "words" table.
	WordsTable = &schema.Table{
		Name:       "words",
		Columns:    WordsColumns,
		PrimaryKey: []*schema.Column{WordsColumns[0]},
	}

	// BlockWordsColumns holds the columns for the "block_words" table.
	BlockWordsColumns = []*schema.Column{
		{Name: "block_id", Type: field.TypeInt},
		{Name: "word_id", Type: field.TypeInt},
	}
	// BlockWordsTable holds the schema information for the "block_words" table.
	BlockWordsTable = &schema.Table{
		Name:       "block_words",
		Columns:    BlockWordsColumns,
		PrimaryKey: []*schema.Column{BlockWordsColumns[0], BlockWordsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "block_words_block_id",
				Columns:    []*schema.Column{BlockWordsColumns[0]},
				RefColumns: []*schema.Column{BlocksColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "block_words_word_id",
				Columns:    []*schema.Column{BlockWordsColumns[1]},
				RefColumns: []*schema.Column{WordsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// LearnerWordsColumns holds the columns for the "learner_words" table.
	LearnerWordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "mastery_level", Type: field.TypeInt, Default: 0},
		{Name: "added_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "word_id", Type: field.TypeInt, Unique: true},
	}
	// LearnerWordsTable holds the schema information for the "learner_words" table.
	LearnerWordsTable = &schema.Table{
		Name:       "learner_words",
		Columns:    LearnerWordsColumns,
		PrimaryKey: []*schema.Column{LearnerWordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "learner_words_words_learner",
				Columns:    []*schema.Column{LearnerWordsColumns[5]},
				RefColumns: []*schema.Column{WordsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// ProfilesColumns holds the columns for the "profiles" table.
	ProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "num_learned_words", Type: field.TypeInt, Default: 0},
		{Name: "experience", Type: field.TypeInt, Default: 0},
	}
	// ProfilesTable holds the schema information for the "profiles" table.
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
	}

	// WordEditsColumns holds the columns for the "word_edits" table.
	WordEditsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "word_id", Type: field.TypeInt},
		{Name: "field", Type: field.TypeString},
		{Name: "old_value", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "new_value", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "edited_at", Type: field.TypeTime},
	}
	// WordEditsTable holds the schema information for the "word_edits" table.
	WordEditsTable = &schema.Table{
		Name:       "word_edits",
		Columns:    WordEditsColumns,
		PrimaryKey: []*schema.Column{WordEditsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "wordedit_word_id", Columns: []*schema.Column{WordEditsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		RequestEventsTable,
		QuizReportsTable,
		BlocksTable,
		WordsTable,
		BlockWordsTable,
		LearnerWordsTable,
		ProfilesTable,
		WordEditsTable,
	}
)

func init() {
	BlockWordsTable.ForeignKeys[0].RefTable = BlocksTable
	BlockWordsTable.ForeignKeys[1].RefTable = WordsTable
	LearnerWordsTable.ForeignKeys[0].RefTable = WordsTable
}
