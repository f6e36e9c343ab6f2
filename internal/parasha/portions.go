// Package parasha resolves the weekly Torah portion read on a Sabbath.
package parasha

// Book is one of the five books of the Torah.
type Book string

const (
	Genesis     Book = "Genesis"
	Exodus      Book = "Exodus"
	Leviticus   Book = "Leviticus"
	Numbers     Book = "Numbers"
	Deuteronomy Book = "Deuteronomy"
)

// Portion is an entry of the annual reading cycle. Name is the
// transliteration and identifies the portion.
type Portion struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	HebrewName  string `json:"hebrew_name"`
	EnglishName string `json:"english_name"`
	Book        Book   `json:"book"`
}

// Portion indexes referenced by the combination rules.
const (
	bereshit       = 0
	vayakhel       = 21
	tazria         = 26
	achreiMot      = 28
	behar          = 31
	chukat         = 38
	matot          = 41
	nitzavim       = 50
	vayeilech      = 51
	haazinu        = 52
	vezotHaberakha = 53
)

var portions = [...]Portion{
	{0, "Bereshit", "בְּרֵאשִׁית", "In the beginning", Genesis},
	{1, "Noach", "נֹחַ", "Noah", Genesis},
	{2, "Lech-Lecha", "לֶךְ-לְךָ", "Go forth", Genesis},
	{3, "Vayera", "וַיֵּרָא", "And He appeared", Genesis},
	{4, "Chayei Sara", "חַיֵּי שָֹרָה", "Life of Sarah", Genesis},
	{5, "Toldot", "תּוֹלְדֹת", "Generations", Genesis},
	{6, "Vayetzei", "וַיֵּצֵא", "And he went out", Genesis},
	{7, "Vayishlach", "וַיִּשְׁלַח", "And he sent", Genesis},
	{8, "Vayeshev", "וַיֵּשֶׁב", "And he settled", Genesis},
	{9, "Miketz", "מִקֵּץ", "At the end", Genesis},
	{10, "Vayigash", "וַיִּגַּשׁ", "And he drew near", Genesis},
	{11, "Vayechi", "וַיְחִי", "And he lived", Genesis},
	{12, "Shemot", "שְׁמוֹת", "Names", Exodus},
	{13, "Vaera", "וָאֵרָא", "And I appeared", Exodus},
	{14, "Bo", "בֹּא", "Come", Exodus},
	{15, "Beshalach", "בְּשַׁלַּח", "When he let go", Exodus},
	{16, "Yitro", "יִתְרוֹ", "Jethro", Exodus},
	{17, "Mishpatim", "מִּשְׁפָּטִים", "Laws", Exodus},
	{18, "Terumah", "תְּרוּמָה", "Offering", Exodus},
	{19, "Tetzaveh", "תְּצַוֶּה", "You shall command", Exodus},
	{20, "Ki Tisa", "כִּי תִשָּׂא", "When you take", Exodus},
	{21, "Vayakhel", "וַיַּקְהֵל", "And he assembled", Exodus},
	{22, "Pekudei", "פְקוּדֵי", "Accounts", Exodus},
	{23, "Vayikra", "וַיִּקְרָא", "And He called", Leviticus},
	{24, "Tzav", "צַו", "Command", Leviticus},
	{25, "Shmini", "שְּׁמִינִי", "Eighth", Leviticus},
	{26, "Tazria", "תַזְרִיעַ", "She conceives", Leviticus},
	{27, "Metzora", "מְּצֹרָע", "One being diseased", Leviticus},
	{28, "Achrei Mot", "אַחֲרֵי מוֹת", "After the death", Leviticus},
	{29, "Kedoshim", "קְדֹשִׁים", "Holy ones", Leviticus},
	{30, "Emor", "אֱמֹר", "Speak", Leviticus},
	{31, "Behar", "בְּהַר", "On the mount", Leviticus},
	{32, "Bechukotai", "בְּחֻקֹּתַי", "In My statutes", Leviticus},
	{33, "Bamidbar", "בְּמִדְבַּר", "In the wilderness", Numbers},
	{34, "Nasso", "נָשׂא", "Take", Numbers},
	{35, "Beha'alotcha", "בְּהַעֲלֹתְךָ", "When you set up", Numbers},
	{36, "Sh'lach", "שְׁלַח-לְךָ", "Send for yourself", Numbers},
	{37, "Korach", "קֹרַח", "Korah", Numbers},
	{38, "Chukat", "חֻקַּת", "Statute", Numbers},
	{39, "Balak", "בָּלָק", "Balak", Numbers},
	{40, "Pinchas", "פִּינְחָס", "Phinehas", Numbers},
	{41, "Matot", "מַּטּוֹת", "Tribes", Numbers},
	{42, "Masei", "מַסְעֵי", "Journeys", Numbers},
	{43, "Devarim", "דְּבָרִים", "Words", Deuteronomy},
	{44, "Vaetchanan", "וָאֶתְחַנַּן", "And I pleaded", Deuteronomy},
	{45, "Eikev", "עֵקֶב", "Because", Deuteronomy},
	{46, "Re'eh", "רְאֵה", "See", Deuteronomy},
	{47, "Shoftim", "שֹׁפְטִים", "Judges", Deuteronomy},
	{48, "Ki Teitzei", "כִּי-תֵצֵא", "When you go out", Deuteronomy},
	{49, "Ki Tavo", "כִּי-תָבוֹא", "When you come in", Deuteronomy},
	{50, "Nitzavim", "נִצָּבִים", "Standing", Deuteronomy},
	{51, "Vayeilech", "וַיֵּלֶךְ", "And he went", Deuteronomy},
	{52, "Ha'Azinu", "הַאֲזִינוּ", "Listen", Deuteronomy},
	{53, "Vezot Haberakhah", "וְזֹאת הַבְּרָכָה", "And this is the blessing", Deuteronomy},
}

// All returns the 54 portions in reading order.
func All() []Portion {
	out := make([]Portion, len(portions))
	copy(out, portions[:])
	return out
}

// ByName looks a portion up by its transliterated name.
func ByName(name string) (Portion, bool) {
	for _, p := range portions {
		if p.Name == name {
			return p, true
		}
	}
	return Portion{}, false
}
