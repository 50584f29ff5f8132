package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/screens/home"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start a quiz on a learning block",
}

func quizModeCmd(use, short string, mode quiz.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <block>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			block := args[0]
			return runApp(cmd, func(h *home.Screen) screen.Screen {
				return h.Quiz(mode, block)
			})
		},
	}
}

var editCmd = &cobra.Command{
	Use:   "edit <block>",
	Short: "Edit the words of a learning block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		block := args[0]
		return runApp(cmd, func(h *home.Screen) screen.Screen {
			return h.Edit(block)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <block>",
	Short: "Show mastery statistics of a learning block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		block := args[0]
		return runApp(cmd, func(h *home.Screen) screen.Screen {
			return h.Stats(block)
		})
	},
}

func init() {
	quizCmd.AddCommand(quizModeCmd("learn", "Learn new words", quiz.ModeLearn))
	quizCmd.AddCommand(quizModeCmd("choice", "Multiple choice on unlearned words", quiz.ModeMultipleChoice))
	quizCmd.AddCommand(quizModeCmd("review", "Review learned words", quiz.ModeReview))
}
