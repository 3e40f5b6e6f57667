package service

import (
	"codekids/internal/api/models"
	"codekids/internal/blocks"
)

// RecommendedCount is how many challenges the home page recommends
const RecommendedCount = 4

type seedChallenge struct {
	challenge models.Challenge
	initial   []string
}

var seedChallenges = []seedChallenge{
	{
		challenge: models.Challenge{
			Title:           "Maze Runner",
			Description:     "Guide the character through a maze using code blocks",
			Difficulty:      models.ChallengeDifficultyBeginner,
			Type:            models.ChallengeTypeMaze,
			GoalDescription: "Get to the end of the maze",
			ImageURL:        models.ChallengeTypeMaze.ImageURL(),
			SortOrder:       1,
			ExpectedSolution: blocks.CommandList{
				blocks.CommandMoveForward,
				blocks.CommandMoveForward,
				blocks.CommandTurnRight,
				blocks.CommandMoveForward,
			},
		},
	},
	{
		challenge: models.Challenge{
			Title:           "Pattern Artist",
			Description:     "Create beautiful patterns with loops and movement",
			Difficulty:      models.ChallengeDifficultyIntermediate,
			Type:            models.ChallengeTypeArt,
			GoalDescription: "Draw a colorful pattern",
			ImageURL:        models.ChallengeTypeArt.ImageURL(),
			SortOrder:       2,
			ExpectedSolution: blocks.CommandList{
				blocks.CommandRepeatStart,
				blocks.CommandRepeatEnd,
				blocks.CommandMoveForward,
				blocks.CommandTurnRight,
				blocks.CommandMoveForward,
				blocks.CommandTurnRight,
			},
		},
	},
	{
		challenge: models.Challenge{
			Title:           "Dino Jump",
			Description:     "Create a simple jumping game with events and controls",
			Difficulty:      models.ChallengeDifficultyIntermediate,
			Type:            models.ChallengeTypeGame,
			GoalDescription: "Make a dinosaur jump over obstacles",
			ImageURL:        models.ChallengeTypeGame.ImageURL(),
			SortOrder:       3,
			ExpectedSolution: blocks.CommandList{
				blocks.CommandMoveForward,
				blocks.CommandSayHello,
				blocks.CommandMoveForward,
			},
		},
	},
	{
		challenge: models.Challenge{
			Title:           "Bug Finder",
			Description:     "Find and fix the bugs in the code",
			Difficulty:      models.ChallengeDifficultyAdvanced,
			Type:            models.ChallengeTypePuzzle,
			GoalDescription: "Fix all the bugs to make the program work",
			ImageURL:        models.ChallengeTypePuzzle.ImageURL(),
			SortOrder:       4,
			ExpectedSolution: blocks.CommandList{
				blocks.CommandTurnRight,
				blocks.CommandMoveForward,
				blocks.CommandSayHello,
			},
		},
		initial: []string{"when_clicked", "turn_left", "move_forward", "say_hello"},
	},
}

// DefaultChallenges builds the sample challenges against the given catalog.
// Initial block types missing from the catalog are skipped.
func DefaultChallenges(catalog *blocks.Catalog) []models.Challenge {
	out := make([]models.Challenge, 0, len(seedChallenges))
	for _, seed := range seedChallenges {
		challenge := seed.challenge
		program := blocks.NewProgram()
		for _, blockType := range seed.initial {
			if def, ok := catalog.FindByType(blockType); ok {
				program.Append(def)
			}
		}
		challenge.InitialBlocks = program.ToSerializable()
		challenge.ExpectedSolution = append(blocks.CommandList{}, seed.challenge.ExpectedSolution...)
		out = append(out, challenge)
	}
	return out
}
