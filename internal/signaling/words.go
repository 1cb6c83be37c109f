package signaling

// Word pools for generated room ids. Kept soft and neutral since the ids end
// up in links shared between patients and therapists.

var animals = []string{
	"otter", "heron", "koala", "panda", "sparrow", "robin", "dolphin", "turtle", "finch", "lark",
	"seal", "fawn", "lamb", "hare", "wren", "swan", "dove", "owl", "puffin", "badger",
}

var dishes = []string{
	"tea", "cocoa", "honey", "toast", "porridge", "soup", "pancake", "biscuit", "muffin", "scone",
	"cider", "lemonade", "granola", "waffle", "pudding", "broth", "crumble", "jam", "bagel", "latte",
}

var names = []string{
	"alma", "bruno", "clara", "davi", "elis", "flora", "gael", "helena", "iris", "joao",
	"kiara", "lia", "mateus", "nina", "otto", "paula", "rafa", "sofia", "tom", "vera",
}

var randomWords = []string{
	"breeze", "meadow", "willow", "harbor", "lantern", "pebble", "cloud", "river", "garden", "candle",
	"shore", "valley", "hammock", "blanket", "sunrise", "forest", "island", "orchard", "brook", "dune",
}

var adjectives = []string{
	"calm", "gentle", "quiet", "steady", "warm", "soft", "kind", "bright", "easy", "still",
	"cozy", "mellow", "patient", "serene", "tender", "hopeful", "brave", "light", "open", "clear",
}

var extras = []string{
	"amber", "azure", "coral", "ivory", "jade", "lilac", "olive", "pearl", "sage", "teal",
	"mint", "rose", "sand", "slate", "plum", "honeydew", "cobalt", "linen", "moss", "opal",
}
