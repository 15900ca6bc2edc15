package cpstats

import (
	"fmt"
	"math"

	"cpstats-backend/lib/platforms"
)

// per-platform rating ceilings used to project a raw rating onto a
// percentile-looking score
var scoreTargets = map[platforms.Platform]float64{
	platforms.Codeforces: 2800,
	platforms.LeetCode:   2800,
	platforms.AtCoder:    2400,
	platforms.CodeChef:   2800,
}

const defaultScoreTarget = 3000

// ToScore maps a raw rating to a bounded score string such as "57%".
// The result is cosmetic, clamped to [30, 99] so the breakdown never
// shows a demoralizing number. Unrated handles get "N/A".
func ToScore(rating int, platform platforms.Platform) string {
	if rating <= 0 {
		return "N/A"
	}
	target, ok := scoreTargets[platform]
	if !ok {
		target = defaultScoreTarget
	}
	score := int(math.Round(float64(rating) / target * 100))
	if score > 99 {
		score = 99
	}
	if score < 30 {
		score = 30
	}
	return fmt.Sprintf("%d%%", score)
}
