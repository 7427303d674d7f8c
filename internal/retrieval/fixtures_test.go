package retrieval

import (
	"testing"

	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/observability"
)

// finished runs entries through the catalog loader so their derived token
// sets exist, returning them in load order.
func finished(t *testing.T, entries ...*catalog.Entry) []*catalog.Entry {
	t.Helper()
	store := catalog.NewStoreFromEntries(entries, "https://bucket.example.com", observability.Nop())
	return store.Entries()
}

func musicEntry(filename, title, category, tags string, duration float64) *catalog.Entry {
	return &catalog.Entry{
		Filename:        filename,
		DisplayTitle:    title,
		Category:        category,
		Tags:            tags,
		DurationSeconds: duration,
		ItemType:        catalog.ItemTypeMusic,
	}
}

func sfxEntry(filename, title, category, tags string, duration float64) *catalog.Entry {
	return &catalog.Entry{
		Filename:        filename,
		DisplayTitle:    title,
		Category:        category,
		Tags:            tags,
		DurationSeconds: duration,
		ItemType:        catalog.ItemTypeSfx,
	}
}

// storyStore is the shared pipeline fixture: beds and effects matching the
// bedtime intents plus rows the gates must remove.
func storyStore(t *testing.T) *catalog.Store {
	t.Helper()
	return catalog.NewStoreFromEntries([]*catalog.Entry{
		musicEntry("mixkit-gentle-rain-loop-1248.mp3", "Gentle Rain", "ambient", "rain,ambient,soft", 30),
		musicEntry("soft_piano_lullaby.mp3", "Soft Piano Lullaby", "lullaby", "piano,lullaby,calm", 42.5),
		musicEntry("night_crickets.mp3", "Night Crickets", "nature", "cricket,night,ambient", 55),
		musicEntry("playful_ukulele.mp3", "Playful Ukulele", "kids", "ukulele,happy,kids", 28),
		musicEntry("grand_orchestra_finale.mp3", "Grand Orchestra Finale", "orchestral", "orchestra,epic", 120),
		sfxEntry("wing_flap_large.wav", "Wing Flap", "fantasy", "wing,flap,dragon", 1.2),
		sfxEntry("soft_thunder_distant.wav", "Soft Thunder", "weather", "thunder,rain,storm", 4.5),
		sfxEntry("castle_door_creak.wav", "Castle Door", "foley", "door,creak,castle", 2.1),
		sfxEntry("fire_crackle_small.wav", "Fire Crackle", "nature", "fire,crackle,campfire", 6.0),
		sfxEntry("cave_drip_echo.wav", "Cave Drip", "nature", "drip,cave,echo", 3.2),
		sfxEntry("gunshot_loud.wav", "Loud Gunshot", "action", "gun,shot", 1.0),
	}, "https://bucket.example.com", observability.Nop())
}

func filenamesOf(entries []*catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Filename
	}
	return out
}
