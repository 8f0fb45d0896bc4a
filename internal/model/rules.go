package model

// Metric keys supplied by the upstream aggregation layer.
const (
	MetricCheckinCount         = "checkin_count"
	MetricCurrentStreakDays    = "current_streak_days"
	MetricSatisfactionAverage  = "satisfaction_average"
	MetricEngagementScore      = "engagement_score"
	MetricMoodAverage          = "mood_average"
	MetricGoalsCompleted       = "goals_completed"
	MetricNotesWritten         = "notes_written"
	MetricGratitudeCount       = "gratitude_count"
	MetricDateNights           = "date_nights"
	MetricConflictsResolved    = "conflicts_resolved"
	MetricMessagesSent         = "messages_sent"
	MetricAppreciationCount    = "appreciation_count"
	MetricParticipationBalance = "participation_balance"
	MetricWeekendCheckins      = "weekend_checkins"
	MetricSeasonalCheckins     = "seasonal_checkins"
	MetricMonthsTogether       = "months_together"
	MetricSharedGoals          = "shared_goals"
)

// DefaultRuleGroups is the declarative milestone table. Order matters:
// groups and rules are evaluated exactly as declared, and combination rules
// run only after every group here has been committed.
var DefaultRuleGroups = []RuleGroup{
	{
		Category: "frequency",
		Rules: []DetectionRule{
			{Key: "checkin_1", Title: "First Check-in", Description: "You completed your very first check-in together.", Metric: MetricCheckinCount, Threshold: 1},
			{Key: "checkin_10", Title: "Getting Started", Description: "Ten check-ins logged as a couple.", Metric: MetricCheckinCount, Threshold: 10},
			{Key: "checkin_25", Title: "Quarter Century", Description: "Twenty-five check-ins and counting.", Metric: MetricCheckinCount, Threshold: 25},
			{Key: "checkin_50", Title: "Half Century", Description: "Fifty shared check-ins.", Metric: MetricCheckinCount, Threshold: 50},
			{Key: "checkin_100", Title: "Century Club", Description: "One hundred check-ins together.", Metric: MetricCheckinCount, Threshold: 100},
			{Key: "checkin_250", Title: "Devoted", Description: "Two hundred and fifty check-ins.", Metric: MetricCheckinCount, Threshold: 250},
		},
	},
	{
		Category: "consistency",
		Rules: []DetectionRule{
			{Key: "streak_7", Title: "One Week Strong", Description: "Checked in every day for a week.", Metric: MetricCurrentStreakDays, Days: 7},
			{Key: "streak_14", Title: "Two Week Streak", Description: "Fourteen days without missing a beat.", Metric: MetricCurrentStreakDays, Days: 14},
			{Key: "streak_30", Title: "Monthly Momentum", Description: "A full month of daily check-ins.", Metric: MetricCurrentStreakDays, Days: 30},
			{Key: "streak_60", Title: "Habit Formed", Description: "Sixty consecutive days of check-ins.", Metric: MetricCurrentStreakDays, Days: 60},
			{Key: "streak_100", Title: "Century Streak", Description: "One hundred days in a row.", Metric: MetricCurrentStreakDays, Days: 100},
			{Key: "streak_365", Title: "A Year Together", Description: "Every single day for a year.", Metric: MetricCurrentStreakDays, Days: 365},
		},
	},
	{
		Category: "quality",
		Rules: []DetectionRule{
			{Key: "satisfaction_45", Title: "Thriving", Description: "Average satisfaction above 4.5.", Metric: MetricSatisfactionAverage, Threshold: 4.5},
			{Key: "engagement_90", Title: "Fully Engaged", Description: "Engagement score reached 90.", Metric: MetricEngagementScore, Threshold: 90},
			{Key: "mood_40", Title: "Sunny Side", Description: "Average mood above 4.0.", Metric: MetricMoodAverage, Threshold: 4.0},
		},
	},
	{
		Category: "growth",
		Rules: []DetectionRule{
			{Key: "goals_5", Title: "Goal Getters", Description: "Completed five relationship goals.", Metric: MetricGoalsCompleted, Threshold: 5},
			{Key: "goals_25", Title: "Growth Mindset", Description: "Twenty-five goals completed.", Metric: MetricGoalsCompleted, Threshold: 25},
			{Key: "notes_50", Title: "Storytellers", Description: "Fifty shared notes written.", Metric: MetricNotesWritten, Threshold: 50},
			{Key: "conflicts_10", Title: "Peacemakers", Description: "Ten conflicts worked through together.", Metric: MetricConflictsResolved, Threshold: 10},
		},
	},
	{
		Category: "special",
		Rules: []DetectionRule{
			{Key: "date_nights_12", Title: "Date Night Regulars", Description: "Twelve date nights logged.", Metric: MetricDateNights, Threshold: 12},
			{Key: "months_12", Title: "Anniversary", Description: "Twelve months on the app together.", Metric: MetricMonthsTogether, Threshold: 12},
			{Key: "gratitude_100", Title: "Grateful Hearts", Description: "One hundred gratitude entries.", Metric: MetricGratitudeCount, Threshold: 100},
		},
	},
	{
		Category: "seasonal",
		Rules: []DetectionRule{
			{Key: "weekend_20", Title: "Weekend Warriors", Description: "Twenty weekend check-ins.", Metric: MetricWeekendCheckins, Threshold: 20},
			{Key: "seasonal_4", Title: "All Seasons", Description: "Checked in across four holiday seasons.", Metric: MetricSeasonalCheckins, Threshold: 4},
		},
	},
	{
		Category: "collaborative",
		Rules: []DetectionRule{
			{Key: "shared_goals_10", Title: "Team Players", Description: "Ten goals worked on together.", Metric: MetricSharedGoals, Threshold: 10},
			{Key: "balance_80", Title: "Equal Partners", Description: "Participation balance above 80%.", Metric: MetricParticipationBalance, Threshold: 0.8},
		},
	},
	{
		Category: "communication",
		Rules: []DetectionRule{
			{Key: "messages_500", Title: "Always Talking", Description: "Five hundred messages exchanged.", Metric: MetricMessagesSent, Threshold: 500},
			{Key: "appreciation_100", Title: "Appreciation Station", Description: "One hundred appreciations sent.", Metric: MetricAppreciationCount, Threshold: 100},
		},
	},
}

// DefaultComboRules require several conditions to hold simultaneously.
var DefaultComboRules = []ComboRule{
	{
		Key:         "triple_crown",
		Category:    "special",
		Title:       "Triple Crown",
		Description: "A 30-day streak with high satisfaction and balanced participation.",
		Conditions: []ComboCondition{
			{Metric: MetricCurrentStreakDays, Min: 30},
			{Metric: MetricSatisfactionAverage, Min: 4.0},
			{Metric: MetricParticipationBalance, Min: 0.8},
		},
	},
	{
		Key:         "power_couple",
		Category:    "special",
		Title:       "Power Couple",
		Description: "A hundred check-ins and ten completed goals.",
		Conditions: []ComboCondition{
			{Metric: MetricCheckinCount, Min: 100},
			{Metric: MetricGoalsCompleted, Min: 10},
		},
	},
}

// Velocity meta-rule: crossing this many milestones inside a trailing
// 30-day window earns a milestone of its own.
const (
	VelocityKey         = "on_fire"
	VelocityCategory    = "special"
	VelocityTitle       = "On Fire"
	VelocityDescription = "Five or more milestones earned in a single month."
	VelocityThreshold   = 5
	VelocityWindowDays  = 30
)
