package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestQuizGradeHalfCorrectPasses(t *testing.T) {
	quiz := Quiz{
		PassingScore: 50,
		Questions: []Question{
			{Text: "2+2", Options: datatypes.NewJSONType([]string{"3", "4"}), CorrectOptionIndex: 1, Points: 1},
			{Text: "3+3", Options: datatypes.NewJSONType([]string{"6", "7"}), CorrectOptionIndex: 0, Points: 1},
		},
	}

	result := quiz.Grade([]int{1, 1})
	require.Equal(t, 1, result.Score)
	require.Equal(t, 2, result.TotalPoints)
	require.Equal(t, 50.0, result.Percentage)
	require.True(t, result.Passed)
}

func TestQuizGradeWeightsPointsAndMissingAnswers(t *testing.T) {
	quiz := Quiz{
		PassingScore: 70,
		Questions: []Question{
			{CorrectOptionIndex: 0, Points: 2},
			{CorrectOptionIndex: 1, Points: 1},
			{CorrectOptionIndex: 2, Points: 3},
		},
	}

	result := quiz.Grade([]int{0, 1})
	require.Equal(t, 3, result.Score)
	require.Equal(t, 6, result.TotalPoints)
	require.Equal(t, 50.0, result.Percentage)
	require.False(t, result.Passed)
}

func TestQuizGradeRoundsToTwoDecimals(t *testing.T) {
	quiz := Quiz{Questions: []Question{{Points: 1}, {Points: 1, CorrectOptionIndex: 1}, {Points: 1, CorrectOptionIndex: 1}}}

	result := quiz.Grade([]int{0, 0, 0})
	require.Equal(t, 33.33, result.Percentage)
}

func TestQuizGradePassDecidedBeforeRounding(t *testing.T) {
	quiz := Quiz{
		PassingScore: 66.67,
		Questions:    []Question{{Points: 1}, {Points: 1}, {Points: 1, CorrectOptionIndex: 1}},
	}

	result := quiz.Grade([]int{0, 0, 0})
	require.Equal(t, 2, result.Score)
	require.Equal(t, 66.67, result.Percentage)
	require.False(t, result.Passed)

	quiz.PassingScore = 66.66
	require.True(t, quiz.Grade([]int{0, 0, 0}).Passed)
}
