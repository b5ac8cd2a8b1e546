package app

// BotCommand is one entry of the command menu registered at startup
// and echoed by /help.
type BotCommand struct {
	Name        string
	Description string
}

var DefaultCommands = []BotCommand{
	{"start", "Return to the beginning"},
	{"help", "Show bot commands"},
	{"lowprice", "Get the cheapest hotels at the chosen location"},
	{"highprice", "Get the most expensive ones"},
	{"bestdeal", "Find the best deal by sorting by price and distance"},
	{"history", "Shows your search history"},
}

func helpText() string {
	out := "Bot commands:"
	for _, c := range DefaultCommands {
		out += "\n/" + c.Name + " - " + c.Description
	}
	return out
}
