package data

import "fmt"

// Store identifies the marketplace or launcher a Game was imported from.
type Store string

const (
	Steam     Store = "steam"
	Epic      Store = "epic"
	GOG       Store = "gog"
	Itch      Store = "itch"
	Humble    Store = "humble"
	Battlenet Store = "battlenet"
	Amazon    Store = "amazon"
	EA        Store = "ea"
	Xbox      Store = "xbox"
	Ubisoft   Store = "ubisoft"
	Local     Store = "local"
)

// Stores lists every supported store, in sync order.
var Stores = []Store{Steam, Epic, GOG, Itch, Humble, Battlenet, Amazon, EA, Xbox, Ubisoft, Local}

// ParseStore validates a store name.
func ParseStore(s string) (Store, error) {
	for _, store := range Stores {
		if string(store) == s {
			return store, nil
		}
	}
	return "", fmt.Errorf("unknown store '%s'", s)
}

// StoreNames returns the names of every supported store.
func StoreNames() []string {
	names := make([]string, len(Stores))
	for i, store := range Stores {
		names[i] = string(store)
	}
	return names
}

// Provider identifies a metadata source.
type Provider string

const (
	IGDB       Provider = "igdb"
	Metacritic Provider = "metacritic"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case IGDB, Metacritic:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider '%s'", s)
}

// Flag is a user-owned boolean column on a Game.
type Flag string

const (
	Hidden Flag = "hidden"
	NSFW   Flag = "nsfw"
)

func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case Hidden, NSFW:
		return Flag(s), nil
	}
	return "", fmt.Errorf("unknown flag '%s'", s)
}
