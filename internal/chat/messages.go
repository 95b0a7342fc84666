package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/ledger"
	"github.com/rtowner/charguess/internal/services/round"
)

const welcomeMessage = `🌸 Welcome to the character guessing game! 🌸

🎉 Characters appear in the chat as the conversation flows.
Guess their names to collect coins, XP and streaks.

✨ Good luck! ✨`

const helpMessage = `🌸 Commands 🌸

🎉 General:
/start - Start playing and get a welcome message.
/help - Show this help message.
/bonus - Claim your daily bonus coins and XP.
/profile - View your level, XP, coins and streak.
/leaderboard - Show the top players by coins.

🔧 Privileged:
/upload <image_url> <name> - Add a new character.
/delete <id> - Delete a character by its ID.
/addsudo <user_id> - Grant privileged access (owner only).
/stats - Show global game statistics.`

const (
	errorMessage        = "❌ Something went wrong, please try again."
	unauthorizedMessage = "🚫 You are not allowed to use this command."
	emptyPoolMessage    = "⚠️ No characters available to display."
)

// characterCaption renders the announcement for a newly presented character
func (d *Dispatcher) characterCaption(character *model.Character) string {
	return fmt.Sprintf("🎨 Guess the Character!\n\n💬 Name: ???\n✨ Rarity: %s %s",
		d.rarityEmoji(character.Rarity), character.Rarity)
}

// rarityEmoji returns the configured emoji for a rarity level
func (d *Dispatcher) rarityEmoji(rarity string) string {
	if emoji, ok := d.emojis[rarity]; ok {
		return emoji
	}
	return "✨"
}

func matchMessage(result *round.GuessResult) string {
	award := result.Award
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Correct! It was %s — you earned %d coins!\n", result.Character.Name, award.BaseCoins)
	fmt.Fprintf(&b, "🔥 Streak bonus: %d coins for a %d-guess streak!\n", award.StreakBonus, award.Streak)
	fmt.Fprintf(&b, "🌟 You earned %d XP.", award.XPGained)
	if award.NewLevel > 0 {
		fmt.Fprintf(&b, "\n🏆 You've leveled up to Level %d!", award.NewLevel)
	} else {
		fmt.Fprintf(&b, "\n📈 XP to next level: %d", award.XPToNext)
	}
	return b.String()
}

func bonusMessage(outcome *ledger.BonusOutcome) string {
	if outcome.State == ledger.BonusOnCooldown {
		h, m := splitHoursMinutes(outcome.Remaining)
		return fmt.Sprintf("⏳ Bonus already claimed. Come back in %dh %dm.", h, m)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎁 Daily bonus claimed: %d coins!\n", outcome.Coins)
	fmt.Fprintf(&b, "🔥 Streak: %d\n", outcome.Streak)
	fmt.Fprintf(&b, "🌟 You earned %d XP.", outcome.XPGained)
	if outcome.NewLevel > 0 {
		fmt.Fprintf(&b, "\n🏆 You've leveled up to Level %d!", outcome.NewLevel)
	} else {
		fmt.Fprintf(&b, "\n📈 XP to next level: %d", outcome.XPToNext)
	}
	return b.String()
}

func profileMessage(profile *ledger.Profile) string {
	name := profile.Player.DisplayName
	if name == "" {
		name = string(profile.Player.ID)
	}
	return fmt.Sprintf(`👤 %s

🏅 Level: %d
🌟 XP: %d (next level in %d)
💰 Coins: %d
🔥 Streak: %d
🎯 Correct guesses: %d`,
		name, profile.Level, profile.Player.XP, profile.XPToNext,
		profile.Player.Coins, profile.Player.Streak, profile.Player.CorrectGuesses)
}

func leaderboardMessage(players []*model.Player) string {
	if len(players) == 0 {
		return "🏆 The leaderboard is empty — start guessing!"
	}

	var b strings.Builder
	b.WriteString("🏆 Leaderboard 🏆\n")
	for i, p := range players {
		name := p.DisplayName
		if name == "" {
			name = string(p.ID)
		}
		fmt.Fprintf(&b, "\n%d. %s — %d coins", i+1, name, p.Coins)
	}
	return b.String()
}

// splitHoursMinutes renders a wait duration with hour/minute granularity,
// rounding up so a few remaining seconds never shows as 0h 0m
func splitHoursMinutes(d time.Duration) (int, int) {
	minutes := int((d + time.Minute - 1) / time.Minute)
	return minutes / 60, minutes % 60
}
