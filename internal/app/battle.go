package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/mentor"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/pkg/models"
	"go.uber.org/zap"
)

// BattlePassScore is the average mentor score (0-100) a battle submission needs
const BattlePassScore = 60

// Battle is a patient case generated for a battle item
type Battle struct {
	Item models.CatalogItem
	Case mentor.PatientCase
}

// BattleSubmission is the learner's answer to a battle case
type BattleSubmission struct {
	Diagnosis string
	Treatment string
	Questions []string
}

// BattleOutcome is the mentor's verdict on a submission
type BattleOutcome struct {
	Evaluation mentor.BattleEvaluation
	Average    int
	Won        bool
	// Reward is the XP a won battle is worth: the item reward scaled by the average score
	Reward int
	Outcome
}

// StartBattle generates the patient case of a battle item
func (s *Service) StartBattle(ctx context.Context, userID, battleID string) (*Battle, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.lookupItem(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if item.Kind != models.KindBattle {
		return nil, fmt.Errorf("%w: %s is not a battle", ErrUnknownItem, battleID)
	}

	specialty := item.DomainID
	if d, ok := catalog.DomainByID(item.DomainID); ok {
		specialty = d.Name
	}
	pc := s.mentor.GeneratePatientCase(ctx, specialty, string(item.Difficulty))
	return &Battle{Item: *item, Case: pc}, nil
}

// SubmitBattle has the mentor score sub. A won battle completes the item for
// its scaled reward; a lost one can be fought again.
func (s *Service) SubmitBattle(ctx context.Context, userID string, battle *Battle, sub BattleSubmission) (*BattleOutcome, error) {
	if battle == nil {
		return nil, fmt.Errorf("%w: no battle in progress", progression.ErrInvalidArgument)
	}
	if strings.TrimSpace(sub.Diagnosis) == "" {
		return nil, fmt.Errorf("%w: diagnosis must not be empty", progression.ErrInvalidArgument)
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}

	eval := s.mentor.EvaluateBattle(ctx, mentor.BattleSubmission{
		PatientCase:      battle.Case.Summary(),
		Questions:        sub.Questions,
		Diagnosis:        sub.Diagnosis,
		Treatment:        sub.Treatment,
		CorrectDiagnosis: battle.Case.CorrectDiagnosis,
	})
	res := &BattleOutcome{Evaluation: eval, Average: eval.TotalScore / 4}
	res.Won = res.Average >= BattlePassScore
	res.Reward = scaleReward(battle.Item.XPReward, res.Average)

	item := battle.Item
	var err error
	res.Outcome, err = s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		if !res.Won {
			return current(st), nil
		}
		return completeItem(st, &item, res.Reward)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("battle scored",
		zap.String("user", userID),
		zap.String("battle", item.ID),
		zap.Int("average", res.Average),
		zap.Bool("won", res.Won),
		zap.Bool("model", !eval.Fallback))
	return res, nil
}

// scaleReward returns percent% of reward without overflowing
func scaleReward(reward, percent int) int {
	return reward/100*percent + reward%100*percent/100
}
