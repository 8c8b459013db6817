// Package words holds the built-in word categories offered to drawers.
package words

import (
	"math/rand"
	"sort"
	"strings"
)

// DefaultCategory is used when a room is created without a category.
const DefaultCategory = "general"

// CustomCategory marks a host supplied word list.
const CustomCategory = "custom"

var catalog = map[string][]string{
	"general": {
		"apple", "banana", "car", "dog", "elephant", "fish", "guitar", "hat", "ice cream",
		"jellyfish", "kangaroo", "lion", "monkey", "notebook", "orange", "penguin", "queen",
		"rainbow", "sun", "tiger", "umbrella", "violin", "watermelon", "xylophone", "yacht", "zebra",
		"airplane", "beach", "castle", "dinosaur", "eagle", "forest", "giraffe", "helicopter",
		"island", "jungle", "kite", "lighthouse", "mountain", "night", "ocean", "pizza",
		"rocket", "star", "train", "unicorn", "volcano", "whale", "x-ray", "yoga", "zoo",
	},
	"animals": {
		"ant", "bear", "cat", "dog", "elephant", "fox", "giraffe", "horse", "iguana", "jaguar",
		"kangaroo", "lion", "monkey", "narwhal", "octopus", "penguin", "quokka", "rabbit", "snake",
		"tiger", "unicorn", "vulture", "wolf", "x-ray fish", "yak", "zebra", "alligator", "bat",
		"cheetah", "dolphin", "eagle", "flamingo", "gorilla", "hamster", "impala", "jellyfish",
	},
	"food": {
		"apple", "banana", "cake", "donut", "egg", "fries", "grape", "honey", "ice cream", "jam",
		"kiwi", "lemon", "mango", "noodles", "orange", "pizza", "quiche", "raspberry", "sushi",
		"taco", "udon", "vanilla", "waffle", "yogurt", "zucchini", "avocado", "broccoli", "cheese",
		"dumpling", "eggplant", "falafel", "guacamole", "hamburger", "lasagna", "mushroom",
	},
	"countries": {
		"australia", "brazil", "canada", "denmark", "egypt", "france", "germany", "hungary", "india",
		"japan", "kenya", "luxembourg", "mexico", "netherlands", "oman", "portugal", "qatar", "russia",
		"spain", "thailand", "ukraine", "vietnam", "wales", "yemen", "zimbabwe", "argentina", "belgium",
		"chile", "dominican republic", "estonia", "finland", "greece", "iceland", "italy", "jamaica",
	},
}

// Categories returns the names of all built-in categories in sorted order.
func Categories() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the word list for category. Matching ignores case.
func Lookup(category string) ([]string, bool) {
	list, ok := catalog[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, false
	}
	return append([]string(nil), list...), true
}

// Normalize trims every entry, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Sample picks n distinct entries of list uniformly at random without
// replacement. If n exceeds len(list) the whole list is returned shuffled.
func Sample(r *rand.Rand, list []string, n int) []string {
	pool := append([]string(nil), list...)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
