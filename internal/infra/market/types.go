package market

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
)

// Wire shapes of the remote trading API. These never leave this package;
// everything is converted to domain types at the boundary.

type itemsEnvelope struct {
	Payload struct {
		Items []wireCatalogItem `json:"items"`
	} `json:"payload"`
}

type wireCatalogItem struct {
	ItemName string `json:"item_name"`
	URLName  string `json:"url_name"`
	Thumb    string `json:"thumb"`
}

type ordersEnvelope struct {
	Payload struct {
		Orders []wireOrder `json:"orders"`
	} `json:"payload"`
	Include struct {
		Item *wireItem `json:"item"`
	} `json:"include"`
}

type wireOrder struct {
	Platinum  float64  `json:"platinum"`
	Quantity  int      `json:"quantity"`
	OrderType string   `json:"order_type"`
	Visible   bool     `json:"visible"`
	Subtype   string   `json:"subtype"`
	ModRank   *int     `json:"mod_rank"`
	User      wireUser `json:"user"`
}

type wireUser struct {
	IngameName string `json:"ingame_name"`
	Reputation int    `json:"reputation"`
	Status     string `json:"status"`
}

type wireItem struct {
	ID         string        `json:"id"`
	ItemsInSet []wireSetItem `json:"items_in_set"`
}

type wireSetItem struct {
	ID      string   `json:"id"`
	URLName string   `json:"url_name"`
	Tags    []string `json:"tags"`
	Ducats  int      `json:"ducats"`
	En      struct {
		ItemName string `json:"item_name"`
		WikiLink string `json:"wiki_link"`
		Drop     []struct {
			Name string `json:"name"`
		} `json:"drop"`
	} `json:"en"`
}

type statisticsEnvelope struct {
	Payload struct {
		StatisticsClosed map[string][]wireStatistic `json:"statistics_closed"`
	} `json:"payload"`
}

type wireStatistic struct {
	Datetime string  `json:"datetime"`
	Median   float64 `json:"median"`
	Subtype  string  `json:"subtype"`
	ModRank  *int    `json:"mod_rank"`
}

// level maps an entry's condition variant to its numeric level. Base
// condition ("intact", or no variant at all) is level 0; mod entries use
// their rank directly.
func level(subtype string, modRank *int) int {
	if subtype != "" {
		switch subtype {
		case "intact":
			return 0
		case "exceptional":
			return 1
		case "flawless":
			return 2
		case "radiant":
			return 3
		default:
			return 5
		}
	}
	if modRank != nil {
		return *modRank
	}
	return 0
}

func (o *wireOrder) toDomain() domain.Order {
	return domain.Order{
		Price:    decimal.NewFromFloat(o.Platinum),
		Quantity: o.Quantity,
		Side:     o.OrderType,
		Visible:  o.Visible,
		Level:    level(o.Subtype, o.ModRank),
		User: domain.Trader{
			Name:       o.User.IngameName,
			Reputation: o.User.Reputation,
			Online:     o.User.Status == "ingame",
		},
	}
}

func (s *wireStatistic) toDomain() domain.PriceSample {
	at, _ := time.Parse(time.RFC3339, s.Datetime)
	return domain.PriceSample{
		Median: decimal.NewFromFloat(s.Median),
		Level:  level(s.Subtype, s.ModRank),
		At:     at,
	}
}

// toDetail extracts the metadata of the item identified by the set's own
// id. Relic sources and ducat values only exist for prime (non-mod)
// items.
func (it *wireItem) toDetail() *domain.ItemDetail {
	var this *wireSetItem
	for i := range it.ItemsInSet {
		if it.ItemsInSet[i].ID == it.ID {
			this = &it.ItemsInSet[i]
			break
		}
	}
	if this == nil {
		if len(it.ItemsInSet) == 0 {
			return nil
		}
		this = &it.ItemsInSet[0]
	}

	detail := &domain.ItemDetail{
		Tags:     this.Tags,
		WikiLink: this.En.WikiLink,
	}

	prime, mod := false, false
	for _, tag := range this.Tags {
		if tag == "prime" {
			prime = true
		}
		if tag == "mod" {
			mod = true
		}
	}
	if prime && !mod {
		detail.Ducats = this.Ducats
		for _, d := range this.En.Drop {
			name := d.Name
			if i := strings.Index(name, " Relic"); i > 0 {
				name = name[:i]
			}
			detail.Relics = append(detail.Relics, name)
		}
	}
	return detail
}
