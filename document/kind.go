package document

import "fmt"

// Kind is the single-character item type that starts every menu line.
// Bytes outside the named set are kept as-is.
type Kind byte

const (
	Text      Kind = '0'
	Menu      Kind = '1'
	CsoServer Kind = '2'
	Error     Kind = '3'
	BinHex    Kind = '4'
	DosBinary Kind = '5'
	UuEncoded Kind = '6'
	Search    Kind = '7'
	Telnet    Kind = '8'
	Binary    Kind = '9'
	Redundant Kind = '+'
	Tn3270    Kind = 'T'
	Gif       Kind = 'g'
	Image     Kind = 'I'
	Info      Kind = 'i'
	Html      Kind = 'h'
	Sound     Kind = 's'
	Document  Kind = 'd'
)

// Action is what following an item of a given kind does.
type Action int

const (
	FollowMenu Action = iota
	FollowText
	FollowSearch
	FollowUnsupported
)

// Selectable reports whether items of this kind can be selected and followed.
func (k Kind) Selectable() bool {
	switch k {
	case Info, Error, Redundant, CsoServer, Telnet, Tn3270:
		return false
	default:
		return true
	}
}

// Prefix returns the three-column marker shown before an item's display text.
func (k Kind) Prefix() string {
	switch k {
	case Text:
		return "[T]"
	case Menu:
		return "[D]"
	case Search:
		return "[?]"
	case Binary:
		return "[B]"
	case Image, Gif:
		return "[I]"
	case Sound:
		return "[S]"
	case Html:
		return "[H]"
	case Error:
		return "[E]"
	case Info:
		return "   "
	default:
		return "[?]"
	}
}

// Action returns how an item of this kind is followed. Unknown kinds are
// treated as menus.
func (k Kind) Action() Action {
	switch k {
	case Menu:
		return FollowMenu
	case Search:
		return FollowSearch
	case Text, Html:
		return FollowText
	case Binary, Image, Gif, Sound, DosBinary, BinHex, UuEncoded:
		return FollowUnsupported
	default:
		return FollowMenu
	}
}

// IsText reports whether a page fetched for this kind is parsed as a document
// rather than a menu.
func (k Kind) IsText() bool {
	return k.Action() == FollowText
}

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Menu:
		return "menu"
	case CsoServer:
		return "cso"
	case Error:
		return "error"
	case BinHex:
		return "binhex"
	case DosBinary:
		return "dos"
	case UuEncoded:
		return "uuencode"
	case Search:
		return "search"
	case Telnet:
		return "telnet"
	case Binary:
		return "binary"
	case Redundant:
		return "redundant"
	case Tn3270:
		return "tn3270"
	case Gif:
		return "gif"
	case Image:
		return "image"
	case Info:
		return "info"
	case Html:
		return "html"
	case Sound:
		return "sound"
	case Document:
		return "doc"
	default:
		return fmt.Sprintf("kind(0x%02x)", byte(k))
	}
}
