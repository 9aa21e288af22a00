package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lg/coach-energy-api/nutrition"
)

/* ─── Shared biometric flags ─────────────────────────────────────────── */

type bioFlags struct {
	weight     float64
	weightUnit string
	height     float64
	heightUnit string
	age        int
	gender     string
	bodyFat    float64
}

func (b *bioFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&b.weight, "weight", 0, "body weight")
	cmd.Flags().StringVar(&b.weightUnit, "weight-unit", "kg", "kg or lbs")
	cmd.Flags().Float64Var(&b.height, "height", 0, "height")
	cmd.Flags().StringVar(&b.heightUnit, "height-unit", "cm", "cm or in")
	cmd.Flags().IntVar(&b.age, "age", -1, "age in years")
	cmd.Flags().StringVar(&b.gender, "gender", "", "male, female or other")
	cmd.Flags().Float64Var(&b.bodyFat, "body-fat", 0, "body fat percent (optional)")
}

// input maps unset (zero or negative) flags to absent fields so the engine
// reports them as missing.
func (b *bioFlags) input() nutrition.BiometricInput {
	in := nutrition.BiometricInput{
		WeightUnit: nutrition.WeightUnit(b.weightUnit),
		HeightUnit: nutrition.HeightUnit(b.heightUnit),
		Gender:     nutrition.Gender(strings.ToLower(b.gender)),
	}
	if b.weight > 0 {
		in.Weight = &b.weight
	}
	if b.height > 0 {
		in.Height = &b.height
	}
	if b.age >= 0 {
		in.Age = &b.age
	}
	if b.bodyFat > 0 {
		in.BodyFatPct = &b.bodyFat
	}
	return in
}

func (b *bioFlags) estimateBMR(ctx context.Context, e *env) (nutrition.BMRResult, error) {
	profile, err := b.input().Normalize(time.Now())
	if err != nil {
		return nutrition.BMRResult{}, err
	}
	return nutrition.NewBMREstimator(e.oracle, e.log).Estimate(ctx, profile)
}

/* ─── bmr ────────────────────────────────────────────────────────────── */

func newBMRCmd(e *env) *cobra.Command {
	var bio bioFlags
	cmd := &cobra.Command{
		Use:   "bmr",
		Short: "Estimate basal metabolic rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := bio.estimateBMR(cmd.Context(), e)
			if err != nil {
				return err
			}
			return e.print(cmd, res)
		},
	}
	bio.register(cmd)
	return cmd
}

/* ─── plan ───────────────────────────────────────────────────────────── */

func newPlanCmd(e *env) *cobra.Command {
	var (
		bio                   bioFlags
		bmr                   int
		goalWeight            float64
		activity, volume      string
		protein               float64
		diet, deadline, today string
		custom                nutrition.CustomMacroOverride
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate calorie and macro targets",
		Long: "Generate calorie and macro targets. Pass --bmr to use a known value, or\n" +
			"--height, --age and --gender to estimate it first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if today != "" {
				t, err := time.Parse("2006-01-02", today)
				if err != nil {
					return fmt.Errorf("invalid --today, expected YYYY-MM-DD")
				}
				now = t
			}

			req := nutrition.PlanRequest{
				WorkActivityLevel: nutrition.ActivityLevel(activity),
				TrainingVolume:    nutrition.TrainingVolume(volume),
				ProteinPerKg:      protein,
				DietType:          nutrition.DietType(diet),
			}
			if deadline != "" {
				d, err := time.Parse("2006-01-02", deadline)
				if err != nil {
					return fmt.Errorf("invalid --deadline, expected YYYY-MM-DD")
				}
				req.GoalDeadline = &d
			}
			if cmd.Flags().Changed("custom-calories") {
				req.CustomMacros = &custom
			}

			if bmr <= 0 && bio.height > 0 {
				res, err := bio.estimateBMR(cmd.Context(), e)
				if err != nil {
					return err
				}
				bmr = res.BMR
				fmt.Fprintf(cmd.ErrOrStderr(), "estimated BMR %d kcal (%s, %s)\n", res.BMR, res.Method, res.Source)
			}

			state := nutrition.ClientState{
				WeightUnit: nutrition.WeightUnit(bio.weightUnit),
				Gender:     nutrition.Gender(strings.ToLower(bio.gender)),
			}
			if bio.weight > 0 {
				state.Weight = &bio.weight
			}
			if goalWeight > 0 {
				state.GoalWeight = &goalWeight
			}
			if bmr > 0 {
				state.BMR = &bmr
			}

			plan, err := nutrition.GeneratePlan(state, req, now)
			if err != nil {
				return err
			}
			warn(cmd, plan.Warnings)
			return e.print(cmd, plan)
		},
	}
	bio.register(cmd)
	f := cmd.Flags()
	f.IntVar(&bmr, "bmr", 0, "known BMR in kcal")
	f.Float64Var(&goalWeight, "goal-weight", 0, "goal weight, in --weight-unit")
	f.StringVar(&activity, "activity", string(nutrition.ActivitySedentary), "work activity level")
	f.StringVar(&volume, "volume", string(nutrition.Volume0to1), "weekly training hours: 0-1, 2-3, 4-5, 6-7, 8+")
	f.Float64Var(&protein, "protein", 1.8, "protein target in g per kg")
	f.StringVar(&diet, "diet", string(nutrition.DietBalanced), "balanced, high_carb, low_carb, keto or custom")
	f.StringVar(&deadline, "deadline", "", "goal date, YYYY-MM-DD")
	f.StringVar(&today, "today", "", "plan as of this date instead of now, YYYY-MM-DD")
	f.IntVar(&custom.Calories, "custom-calories", 0, "override: daily calories")
	f.IntVar(&custom.ProteinG, "custom-protein", 0, "override: protein grams")
	f.IntVar(&custom.CarbG, "custom-carbs", 0, "override: carb grams")
	f.IntVar(&custom.FatG, "custom-fat", 0, "override: fat grams")
	return cmd
}

/* ─── activity ───────────────────────────────────────────────────────── */

func newActivityCmd(e *env) *cobra.Command {
	var (
		intensity   string
		minutes     int
		weightKg    float64
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "activity NAME",
		Short: "Estimate calories and recovery for an activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := nutrition.DefaultCatalogEntries()
			if catalogPath != "" {
				f, err := os.Open(catalogPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if entries, err = nutrition.LoadCatalog(f); err != nil {
					return fmt.Errorf("loading %s: %w", catalogPath, err)
				}
			}

			est := nutrition.NewActivityEstimator(nutrition.NewMemoryCatalog(entries), e.oracle, e.log)
			analysis, err := est.Analyze(cmd.Context(), nutrition.ActivityRequest{
				Name:            strings.Join(args, " "),
				Intensity:       nutrition.Intensity(intensity),
				DurationMinutes: minutes,
				WeightKg:        weightKg,
			})
			if err != nil {
				return err
			}
			return e.print(cmd, analysis)
		},
	}
	f := cmd.Flags()
	f.StringVar(&intensity, "intensity", string(nutrition.IntensityModerate), "low, moderate or vigorous")
	f.IntVar(&minutes, "minutes", 60, "duration in minutes")
	f.Float64Var(&weightKg, "weight-kg", 0, "body weight in kg")
	f.StringVar(&catalogPath, "catalog", "", "activity catalog YAML (defaults to the bundled one)")
	return cmd
}

/* ─── weekly ─────────────────────────────────────────────────────────── */

func newWeeklyCmd(e *env) *cobra.Command {
	var (
		base nutrition.Baseline
		adds []string
	)
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Spread a daily baseline across the week",
		Example: "  macroplan weekly --calories 2014 --protein 180 --carbs 196 --fat 52 \\\n" +
			"    --add mon=350 --add wed=350 --add sat=600",
		RunE: func(cmd *cobra.Command, args []string) error {
			if base.Calories <= 0 {
				return fmt.Errorf("--calories is required")
			}
			var contribs []nutrition.DayContribution
			for _, a := range adds {
				c, err := parseContribution(a)
				if err != nil {
					return err
				}
				contribs = append(contribs, c)
			}
			return e.print(cmd, nutrition.DistributeWeekly(base, nutrition.AggregateByWeekday(contribs)))
		},
	}
	f := cmd.Flags()
	f.IntVar(&base.Calories, "calories", 0, "rest-day calories")
	f.IntVar(&base.ProteinG, "protein", 0, "protein grams")
	f.IntVar(&base.CarbG, "carbs", 0, "carb grams")
	f.IntVar(&base.FatG, "fat", 0, "fat grams")
	f.StringArrayVar(&adds, "add", nil, "session calories as DAY=KCAL, repeatable")
	return cmd
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// parseContribution reads "wed=350" or "Wednesday=350".
func parseContribution(s string) (nutrition.DayContribution, error) {
	day, kcal, ok := strings.Cut(s, "=")
	if !ok {
		return nutrition.DayContribution{}, fmt.Errorf("invalid --add %q, expected DAY=KCAL", s)
	}
	day = strings.ToLower(strings.TrimSpace(day))
	if len(day) > 3 {
		day = day[:3]
	}
	wd, ok := weekdayNames[day]
	if !ok {
		return nutrition.DayContribution{}, fmt.Errorf("invalid day in --add %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(kcal))
	if err != nil {
		return nutrition.DayContribution{}, fmt.Errorf("invalid calories in --add %q", s)
	}
	return nutrition.DayContribution{Day: wd, Calories: n}, nil
}
