package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a top-level listing category with its allowed sub-categories.
type Category struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Aliases       []string `json:"aliases,omitempty"`
	SubCategories []string `json:"subCategories"`
}

// FeaturedPrice is one purchasable featured-listing duration.
type FeaturedPrice struct {
	Days  int             `json:"days"`
	Price decimal.Decimal `json:"price"`
}

// Market is the immutable marketplace configuration handed to the services.
type Market struct {
	ServiceFeeRate decimal.Decimal
	Currency       string
	FeaturedPrices map[int]decimal.Decimal
	PromotionTTL   time.Duration
	Categories     []Category
	Cities         []string
}

// DefaultMarket returns the built-in marketplace settings.
func DefaultMarket() Market {
	return Market{
		ServiceFeeRate: decimal.RequireFromString("0.03"),
		Currency:       "TRY",
		FeaturedPrices: map[int]decimal.Decimal{
			7:  decimal.NewFromInt(50),
			15: decimal.NewFromInt(80),
			30: decimal.NewFromInt(120),
		},
		PromotionTTL: 30 * time.Minute,
		Categories:   defaultCategories,
		Cities:       []string{"İstanbul", "Ankara", "İzmir", "Bursa", "Antalya", "Adana", "Konya", "Gaziantep"},
	}
}

// Market builds the marketplace settings from the loaded configuration.
func (c Config) Market() (Market, error) {
	m := DefaultMarket()
	if c.Currency != "" {
		m.Currency = c.Currency
	}
	if c.ServiceFeeRate != "" {
		rate, err := decimal.NewFromString(c.ServiceFeeRate)
		if err != nil {
			return Market{}, fmt.Errorf("SERVICE_FEE_RATE: %w", err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return Market{}, fmt.Errorf("SERVICE_FEE_RATE must be in [0, 1), got %s", rate)
		}
		m.ServiceFeeRate = rate
	}
	if c.FeaturedPrices != "" {
		prices, err := parseFeaturedPrices(c.FeaturedPrices)
		if err != nil {
			return Market{}, err
		}
		m.FeaturedPrices = prices
	}
	if c.PromotionTTL > 0 {
		m.PromotionTTL = c.PromotionTTL
	}
	return m, nil
}

// parseFeaturedPrices reads "days:price" pairs, e.g. "7:50,15:80".
func parseFeaturedPrices(raw string) (map[int]decimal.Decimal, error) {
	prices := make(map[int]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("FEATURED_PRICES: malformed pair %q", pair)
		}
		days, err := strconv.Atoi(parts[0])
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("FEATURED_PRICES: invalid days %q", parts[0])
		}
		price, err := decimal.NewFromString(parts[1])
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("FEATURED_PRICES: invalid price %q", parts[1])
		}
		prices[days] = price
	}
	return prices, nil
}

// PriceList returns the featured prices ordered by duration.
func (m Market) PriceList() []FeaturedPrice {
	list := make([]FeaturedPrice, 0, len(m.FeaturedPrices))
	for days, price := range m.FeaturedPrices {
		list = append(list, FeaturedPrice{Days: days, Price: price})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Days < list[j].Days })
	return list
}

// FindCategory resolves a category by name, slug or alias.
func (m Market) FindCategory(name string) (Category, bool) {
	for _, c := range m.Categories {
		if c.Name == name || c.Slug == name {
			return c, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c, true
			}
		}
	}
	return Category{}, false
}

// HasCity reports whether the city is served.
func (m Market) HasCity(city string) bool {
	for _, c := range m.Cities {
		if c == city {
			return true
		}
	}
	return false
}

var defaultCategories = []Category{
	{ID: "1", Name: "Emlak", Slug: "emlak", Aliases: []string{"Emlak"},
		SubCategories: []string{"Konut", "İş Yeri", "Arsa", "Konut Projeleri", "Bina", "Devre Mülk", "Turistik Tesis"}},
	{ID: "2", Name: "Vasıta", Slug: "vasita", Aliases: []string{"Vasıta", "Araç"},
		SubCategories: []string{"Otomobil", "Arazi, SUV & Pickup", "Elektrikli Araçlar", "Motosiklet", "Minivan & Panelvan", "Ticari Araçlar", "Kiralık Araçlar", "Deniz Araçları", "Hasarlı Araçlar"}},
	{ID: "3", Name: "Yedek Parça & Aksesuar", Slug: "yedek-parca", Aliases: []string{"Yedek Parça"},
		SubCategories: []string{"Otomotiv Ekipmanları", "Motosiklet Ekipmanları", "Deniz Aracı Ekipmanları"}},
	{ID: "4", Name: "İkinci El ve Sıfır Alışveriş", Slug: "ikinci-el", Aliases: []string{"Elektronik", "İkinci El", "Giyim", "Ev & Yaşam"},
		SubCategories: []string{"Bilgisayar", "Cep Telefonu & Aksesuar", "Fotoğraf & Kamera", "Ev Dekorasyon", "Ev Elektroniği", "Elektrikli Ev Aletleri", "Giyim & Aksesuar", "Saat", "Spor", "Koleksiyon", "Antika"}},
	{ID: "5", Name: "İş Makineleri & Sanayi", Slug: "is-makinalari", Aliases: []string{"İş Makineleri", "Sanayi"},
		SubCategories: []string{"İş Makineleri", "Tarım Makineleri", "Sanayi", "Elektrik & Enerji"}},
	{ID: "6", Name: "Ustalar ve Hizmetler", Slug: "hizmetler", Aliases: []string{"Hizmetler", "Ustalar"},
		SubCategories: []string{"Ev Tadilat & Dekorasyon", "Nakliye", "Araç Servis & Bakım", "Temizlik", "Tamir & Bakım"}},
	{ID: "7", Name: "Özel Ders Verenler", Slug: "ozel-ders", Aliases: []string{"Özel Ders", "Eğitim"},
		SubCategories: []string{"Lise & Üniversite", "İlkokul & Ortaokul", "Yabancı Dil", "Müzik", "Spor & Dans"}},
	{ID: "8", Name: "İş İlanları", Slug: "is-ilanlari", Aliases: []string{"İş İlanları", "Kariyer"},
		SubCategories: []string{"Avukatlık & Hukuki Danışmanlık", "Eğitim", "Eğlence & Aktivite", "Güzellik & Bakım", "IT & Yazılım", "İnsan Kaynakları"}},
	{ID: "9", Name: "Hayvanlar Alemi", Slug: "hayvanlar", Aliases: []string{"Hayvanlar", "Hayvanlar Alemi"},
		SubCategories: []string{"Evcil Hayvanlar", "Akvaryum Balıkları", "Aksesuarlar", "Bakım Ürünleri", "Yem & Mama"}},
	{ID: "10", Name: "Yardımcı Arayanlar", Slug: "yardimci", Aliases: []string{"Yardımcı", "Bakıcı"},
		SubCategories: []string{"Bebek & Çocuk Bakıcısı", "Yaşlı & Hasta Bakıcısı", "Temizlikçi & Ev İşlerine Yardımcı"}},
}
